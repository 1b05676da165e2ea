package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// Engine 顺序工具链引擎
//
// 按检测到的意图执行对应的工具序列。除最外层 LLM 兜底自身失败外，
// 任何适配器或解析失败都在引擎内部降级消化，Run 总是产出文本。
type Engine struct {
	search   SearchAdapter
	wiki     LookupAdapter
	provider llm.Provider
	logger   *slog.Logger
}

// EngineOption 引擎配置选项
type EngineOption func(*Engine)

// WithSearchAdapter 设置搜索适配器
func WithSearchAdapter(adapter SearchAdapter) EngineOption {
	return func(e *Engine) {
		e.search = adapter
	}
}

// WithLookupAdapter 设置百科适配器
func WithLookupAdapter(adapter LookupAdapter) EngineOption {
	return func(e *Engine) {
		e.wiki = adapter
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine 创建工具链引擎
//
// provider 承担最后的 LLM 兜底，必须非空；适配器缺失时
// 对应意图直接走兜底。
func NewEngine(provider llm.Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// calcLookupPattern 提取 "<量纲> of <对象>" 结构
var calcLookupPattern = regexp.MustCompile(
	`(population|gdp|area|height|length|distance)\s+of\s+([\w\s]+)`)

// Run 按意图执行工具链并返回结果
//
// 返回的 ToolResult.Text 永不为空；error 仅在最外层 LLM 兜底
// 自身失败时非空，那是本轮唯一的致命条件。
func (e *Engine) Run(ctx context.Context, query string) (ToolResult, error) {
	intent := DetectIntent(query)
	e.logger.Info("intent detected", "intent", string(intent), "query", query)

	switch intent {
	case IntentSearch:
		return e.runSearch(ctx, query)
	case IntentWiki:
		return e.runWiki(ctx, query)
	case IntentCalculator:
		return e.runCalculator(query), nil
	case IntentCalcWithLookup:
		return e.runCalcWithLookup(ctx, query)
	default:
		return e.fallbackLLM(ctx, query, "")
	}
}

// runSearch 简单网络搜索
func (e *Engine) runSearch(ctx context.Context, query string) (ToolResult, error) {
	if e.search == nil {
		return e.fallbackLLM(ctx, query, "[Tavily failed: no search adapter] ")
	}

	result, err := e.search.Search(ctx, query)
	if err != nil {
		e.logger.Warn("search adapter failed", "error", err)
		return e.fallbackLLM(ctx, query, fmt.Sprintf("[Tavily failed: %v] ", err))
	}

	return result, nil
}

// runWiki 百科摘要，验证失败时退回搜索，再失败退回 LLM
func (e *Engine) runWiki(ctx context.Context, query string) (ToolResult, error) {
	reason := "no lookup adapter"

	if e.wiki != nil {
		result, err := e.wiki.Summary(ctx, query)
		if err == nil && ValidateWiki(result.Text) {
			return result, nil
		}
		if err != nil {
			reason = err.Error()
		} else {
			reason = "summary failed validation"
		}
		e.logger.Warn("wiki lookup unusable, trying search", "reason", reason)
	}

	if e.search != nil {
		result, err := e.search.Search(ctx, query)
		if err == nil {
			return result, nil
		}
		reason = err.Error()
	}

	return e.fallbackLLM(ctx, query, fmt.Sprintf("[Wiki and Tavily failed: %s] ", reason))
}

// runCalculator 纯算术计算
func (e *Engine) runCalculator(query string) ToolResult {
	expression := query
	if idx := strings.Index(strings.ToLower(query), "calculate"); idx >= 0 {
		expression = strings.TrimSpace(query[idx+len("calculate"):])
	}

	return SafeCalculate(expression)
}

// runCalcWithLookup 先查数再计算的依赖链
//
// 任一抽取或验证失败都返回针对性的说明文本，不调用后续工具。
func (e *Engine) runCalcWithLookup(ctx context.Context, query string) (ToolResult, error) {
	multiplier := ExtractFirstNumber(query)

	var quantity, subject string
	if m := calcLookupPattern.FindStringSubmatch(strings.ToLower(query)); m != nil {
		quantity = m[1]
		subject = strings.TrimSpace(m[2])
	}

	if multiplier == "" || quantity == "" || subject == "" {
		return ToolResult{
			Text:   "Sorry, I couldn't parse the calculation request.",
			Valid:  false,
			Source: SourceNone,
		}, nil
	}

	if e.wiki == nil {
		return ToolResult{
			Text:   fmt.Sprintf("Could not fetch %s data for %s.", quantity, subject),
			Valid:  false,
			Source: SourceNone,
		}, nil
	}

	lookup, err := e.wiki.Summary(ctx, quantity+" of "+subject)
	if err != nil || !ValidateWiki(lookup.Text) {
		e.logger.Warn("lookup step failed", "quantity", quantity, "subject", subject, "error", err)
		return ToolResult{
			Text:   fmt.Sprintf("Could not fetch %s data for %s.", quantity, subject),
			Valid:  false,
			Source: SourceWikipedia,
		}, nil
	}

	factNumber := ExtractFirstNumber(lookup.Text)
	if factNumber == "" {
		return ToolResult{
			Text:   fmt.Sprintf("No numeric %s value found in the summary.", quantity),
			Valid:  false,
			Source: SourceWikipedia,
		}, nil
	}

	calc := SafeCalculate(multiplier + " * " + factNumber)
	if !calc.Valid {
		return ToolResult{Text: CalculationError, Valid: false, Source: SourceCalculator}, nil
	}

	return ToolResult{
		Text:   fmt.Sprintf("%s × %s = %s", multiplier, factNumber, calc.Text),
		Valid:  true,
		Source: SourceCalculator,
	}, nil
}

// fallbackLLM 最外层 LLM 兜底
func (e *Engine) fallbackLLM(ctx context.Context, query, prefix string) (ToolResult, error) {
	content, err := llm.Complete(ctx, e.provider, []message.Message{
		message.NewUserMessage(query),
	})
	if err != nil {
		return ToolResult{}, err
	}

	return ToolResult{
		Text:   prefix + content,
		Valid:  prefix == "",
		Source: SourceNone,
	}, nil
}
