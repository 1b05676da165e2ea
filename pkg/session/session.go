// Package session 把历史、上下文优化、工具链与推理管线装配成对话回合
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
	"github.com/easyops/studybuddy-go/pkg/core/message"
	"github.com/easyops/studybuddy-go/pkg/history"
	"github.com/easyops/studybuddy-go/pkg/otel"
	"github.com/easyops/studybuddy-go/pkg/persona"
	"github.com/easyops/studybuddy-go/pkg/rag"
	"github.com/easyops/studybuddy-go/pkg/reasoning"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

// longHistoryMessages 历史超过该条数时注入摘要
const longHistoryMessages = 10

// Session 一个用户的对话会话
//
// 每个回合按固定顺序执行：记录用户消息、抽取实体、优化上下文、
// 注入实体笔记与长历史摘要、跑工具链、检索笔记、推理、落盘回复。
// 合规拒绝时撤回触发本轮的用户消息。
type Session struct {
	store      history.Store
	entities   history.EntityStore
	optimizer  *contextopt.Optimizer
	summarizer *history.Summarizer
	engine     *toolchain.Engine
	retriever  rag.Retriever
	framework  *reasoning.Framework

	tracer  otel.Tracer
	metrics otel.Metrics
	logger  *slog.Logger

	userLevel persona.Level
}

// Option 会话选项
type Option func(*Session)

// WithEntityStore 设置实体存储
func WithEntityStore(store history.EntityStore) Option {
	return func(s *Session) {
		s.entities = store
	}
}

// WithSummarizer 设置长历史摘要器
func WithSummarizer(summarizer *history.Summarizer) Option {
	return func(s *Session) {
		s.summarizer = summarizer
	}
}

// WithRetriever 设置笔记检索器
func WithRetriever(retriever rag.Retriever) Option {
	return func(s *Session) {
		s.retriever = retriever
	}
}

// WithUserLevel 固定用户水平，不再按措辞推断
func WithUserLevel(level persona.Level) Option {
	return func(s *Session) {
		s.userLevel = level
	}
}

// WithTracer 设置追踪器
func WithTracer(tracer otel.Tracer) Option {
	return func(s *Session) {
		s.tracer = tracer
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(metrics otel.Metrics) Option {
	return func(s *Session) {
		s.metrics = metrics
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New 创建会话
//
// store、optimizer、engine、framework 是必需件；
// 实体存储默认用内存实现，检索器与摘要器可缺省。
func New(store history.Store, optimizer *contextopt.Optimizer,
	engine *toolchain.Engine, framework *reasoning.Framework, opts ...Option) *Session {

	s := &Session{
		store:     store,
		optimizer: optimizer,
		engine:    engine,
		framework: framework,
		entities:  history.NewMemoryEntityStore(),
		tracer:    otel.NewNoopTracer(),
		metrics:   otel.NewNoopMetrics(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Turn 执行一个对话回合并返回推理结论
func (s *Session) Turn(ctx context.Context, query string) (reasoning.Result, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "session.turn")
	defer span.End()

	logger := otel.WithTrace(ctx, s.logger)

	if err := s.store.Append(ctx, message.NewUserMessage(query)); err != nil {
		return reasoning.Result{}, err
	}
	s.trackEntities(ctx, query, logger)

	contextMsgs, err := s.buildContext(ctx, query, logger)
	if err != nil {
		return reasoning.Result{}, err
	}

	tool := s.runToolChain(ctx, query, logger)
	notes := s.retrieveNotes(ctx, query, logger)

	result, err := s.reason(ctx, query, contextMsgs, notes, tool)
	if err != nil {
		span.RecordError(err)
		return reasoning.Result{}, err
	}

	if !result.Compliant {
		// 撤回触发本轮的用户消息，拒绝的交互不留在历史里
		if _, popErr := s.store.PopLast(ctx); popErr != nil {
			logger.Warn("failed to pop rejected user message", "error", popErr)
		}
		s.metrics.Counter(otel.MetricComplianceRejections).Add(ctx, 1,
			otel.NewAttr(otel.AttrComplianceReason, result.Reason))
		logger.Info("turn rejected by compliance gate", "reason", result.Reason)
		return result, nil
	}

	if err := s.store.Append(ctx, message.NewAssistantMessage(result.Text)); err != nil {
		return reasoning.Result{}, err
	}

	s.metrics.Counter(otel.MetricPipelineRuns).Add(ctx, 1)
	s.metrics.Histogram(otel.MetricPipelineRunDuration).Record(ctx,
		float64(time.Since(start).Milliseconds()))
	s.metrics.Histogram(otel.MetricCandidateScore).Record(ctx, result.Score,
		otel.NewAttr(otel.AttrStrategy, string(result.Strategy)))

	return result, nil
}

// trackEntities 抽取并记录查询中的实体
func (s *Session) trackEntities(ctx context.Context, query string, logger *slog.Logger) {
	for _, entity := range history.ExtractEntities(query) {
		if err := s.entities.Put(ctx, entity); err != nil {
			logger.Warn("entity store put failed", "entity", entity.Name, "error", err)
		}
	}
}

// buildContext 组装本回合的上下文消息
//
// 优化后的历史之后依次追加实体笔记和长历史摘要。
func (s *Session) buildContext(ctx context.Context, query string, logger *slog.Logger) ([]message.Message, error) {
	full, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	contextMsgs := s.optimizer.Optimize(query, full)

	queryLower := strings.ToLower(query)
	if all, err := s.entities.All(ctx); err == nil {
		for _, entity := range all {
			if !strings.Contains(queryLower, strings.ToLower(entity.Name)) {
				continue
			}
			contextMsgs = append(contextMsgs, message.NewSystemMessage(
				fmt.Sprintf("Note: User mentioned '%s': %s", entity.Name, entity.Context)))
		}
	} else {
		logger.Warn("entity store read failed", "error", err)
	}

	if s.summarizer != nil && len(full) > longHistoryMessages {
		summary, err := s.summarizer.Summarize(ctx, full)
		if err != nil {
			logger.Warn("history summarization failed", "error", err)
		} else {
			contextMsgs = append(contextMsgs, message.NewSystemMessage("Summary: "+summary))
		}
	}

	return contextMsgs, nil
}

// runToolChain 执行工具链并记录指标
//
// 工具链失败不终止回合，空结果交给推理管线兜底。
func (s *Session) runToolChain(ctx context.Context, query string, logger *slog.Logger) toolchain.ToolResult {
	start := time.Now()

	intent := toolchain.DetectIntent(query)
	s.metrics.Counter(otel.MetricIntentDetected).Add(ctx, 1,
		otel.NewAttr(otel.AttrIntent, string(intent)))

	result, err := s.engine.Run(ctx, query)
	s.metrics.Histogram(otel.MetricStageDuration).Record(ctx,
		float64(time.Since(start).Milliseconds()), otel.NewAttr(otel.AttrStage, "toolchain"))

	if err != nil {
		s.metrics.Counter(otel.MetricToolErrors).Add(ctx, 1)
		logger.Warn("tool chain failed, continuing without tool output", "error", err)
		return toolchain.ToolResult{Text: toolchain.NoToolUsed, Source: toolchain.SourceNone}
	}

	if result.Source.IsTool() {
		s.metrics.Counter(otel.MetricToolCalls).Add(ctx, 1,
			otel.NewAttr(otel.AttrToolSource, string(result.Source)))
	}
	return result
}

// retrieveNotes 检索相关笔记，检索器缺省时返回空串
func (s *Session) retrieveNotes(ctx context.Context, query string, logger *slog.Logger) string {
	if s.retriever == nil {
		return ""
	}

	notes, err := s.retriever.Retrieve(ctx, query, 2)
	if err != nil {
		logger.Warn("note retrieval failed", "error", err)
		return ""
	}
	return rag.JoinNotes(notes)
}

// reason 执行推理管线并记录阶段耗时
func (s *Session) reason(ctx context.Context, query string, contextMsgs []message.Message,
	notes string, tool toolchain.ToolResult) (reasoning.Result, error) {

	start := time.Now()

	result, err := s.framework.ReasonedAnswer(ctx, reasoning.Input{
		Query:     query,
		Context:   contextMsgs,
		RAGNotes:  notes,
		Tool:      tool,
		UserLevel: s.userLevel,
	})

	s.metrics.Histogram(otel.MetricStageDuration).Record(ctx,
		float64(time.Since(start).Milliseconds()), otel.NewAttr(otel.AttrStage, "reasoning"))

	return result, err
}
