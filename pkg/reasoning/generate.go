package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

// planPrompt 计划阶段指令
const planPrompt = "Outline a step-by-step plan to answer the following question. " +
	"Return the plan as a numbered list.\nQuestion: "

// executePromptFormat 执行阶段指令
const executePromptFormat = "Follow this plan to answer the question.\nPlan:\n%s\n\n" +
	"Provide a detailed answer. Show calculations or reasoning openly."

// refinePromptFormat 精炼阶段指令
const refinePromptFormat = "Review the answer for accuracy, logic and clarity. " +
	"Correct any mistake and rewrite succinctly:\n%s"

// proceduralKeywords 触发 Plan-Execute-Refine 的过程式关键词
var proceduralKeywords = []string{"how", "why", "solve", "derive", "calculate"}

// Generator 候选答案生成器
//
// 按策略生成至多四个候选。General-LLM 候选是保底，它的失败
// 是致命的；其余策略失败只会缩小候选集。
type Generator struct {
	provider llm.Provider
	logger   *slog.Logger
}

// NewGenerator 创建候选生成器
func NewGenerator(provider llm.Provider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, logger: logger}
}

// Generate 生成候选答案列表
//
// 候选顺序固定：RAG+Tool、Plan-Execute-Refine、Tool-only、General-LLM。
// 后续的平分决断依赖这个顺序。
func (g *Generator) Generate(ctx context.Context, systemPrompt, query string,
	contextMsgs []message.Message, ragNotes string, tool toolchain.ToolResult) ([]Candidate, error) {

	var candidates []Candidate

	if text, err := g.evidenceAnswer(ctx, systemPrompt, query, contextMsgs, ragNotes, tool); err != nil {
		g.logger.Warn("evidence candidate failed", "error", err)
	} else {
		candidates = append(candidates, Candidate{Strategy: StrategyRAGTool, Text: text})
	}

	if isProcedural(query) {
		if text, err := g.PlanExecuteRefine(ctx, systemPrompt, query, contextMsgs); err != nil {
			g.logger.Warn("plan-execute-refine candidate failed", "error", err)
		} else {
			candidates = append(candidates, Candidate{Strategy: StrategyPlanExecuteRefine, Text: text})
		}
	}

	if tool.Text != "" && !toolchain.IsSentinel(tool.Text) {
		candidates = append(candidates, Candidate{Strategy: StrategyToolOnly, Text: tool.Text})
	}

	msgs := systemMessages(systemPrompt)
	msgs = append(msgs, contextMsgs...)
	msgs = append(msgs, message.NewUserMessage(query))

	general, err := g.chat(ctx, msgs)
	if err != nil {
		if len(candidates) == 0 {
			return nil, errors.WrapError(errors.ErrNoCandidates, err.Error())
		}
		return nil, err
	}
	candidates = append(candidates, Candidate{Strategy: StrategyGeneralLLM, Text: general})

	return candidates, nil
}

// evidenceAnswer 基于检索笔记和工具输出的证据式回答
func (g *Generator) evidenceAnswer(ctx context.Context, systemPrompt, query string,
	contextMsgs []message.Message, ragNotes string, tool toolchain.ToolResult) (string, error) {

	toolBlock := tool.Text
	if toolBlock == "" {
		toolBlock = "(none)"
	}

	evidence := "Relevant notes:\n" + ragNotes + "\n\n" +
		"External tool output:\n" + toolBlock + "\n\n" +
		"The tool output is very important to take care of when the user is " +
		"asking questions about some latest news or to search in the web.\n\n" +
		"Answer the user's question clearly."

	msgs := []message.Message{
		message.NewSystemMessage(systemPrompt),
		message.NewSystemMessage(evidence),
	}
	msgs = append(msgs, contextMsgs...)
	msgs = append(msgs, message.NewUserMessage(query))

	return g.chat(ctx, msgs)
}

// PlanExecuteRefine 三段式回答：先列计划，再执行，最后精炼
func (g *Generator) PlanExecuteRefine(ctx context.Context, systemPrompt, query string,
	contextMsgs []message.Message) (string, error) {

	plan, err := g.chat(ctx, withContext(systemPrompt, planPrompt+query, contextMsgs))
	if err != nil {
		return "", err
	}

	execution, err := g.chat(ctx, withContext(systemPrompt,
		fmt.Sprintf(executePromptFormat, plan), contextMsgs))
	if err != nil {
		return "", err
	}

	return g.chat(ctx, withContext(systemPrompt,
		fmt.Sprintf(refinePromptFormat, execution), contextMsgs))
}

// chat 发起一次 LLM 调用
func (g *Generator) chat(ctx context.Context, msgs []message.Message) (string, error) {
	return llm.Complete(ctx, g.provider, msgs)
}

// isProcedural 判断查询是否属于过程式问题
func isProcedural(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range proceduralKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// systemMessages 构造单条系统消息的切片
func systemMessages(systemPrompt string) []message.Message {
	return []message.Message{message.NewSystemMessage(systemPrompt)}
}

// withContext 组装 系统提示 + 指令 + 上下文 的消息序列
func withContext(systemPrompt, instruction string, contextMsgs []message.Message) []message.Message {
	msgs := []message.Message{
		message.NewSystemMessage(systemPrompt),
		message.NewSystemMessage(instruction),
	}
	return append(msgs, contextMsgs...)
}
