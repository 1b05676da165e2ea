package reasoning

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// reviewPromptFormat 检错阶段指令
const reviewPromptFormat = "Review the following answer for any factual, logical, or numerical errors. " +
	"If none, reply 'No errors detected'.  Otherwise list the issues.\n\nQ: %s\nA: %s"

// rewritePromptFormat 改写阶段指令
const rewritePromptFormat = "Based on these issues, rewrite a *corrected* answer:\n\n" +
	"Issues:\n%s\n\nOriginal answer:\n%s"

// correctionTriggers 查询中触发自检的算术与推导线索
var correctionTriggers = []string{
	"+", "-", "*", "/", "integral", "solve", "equation", "derive", "proof",
}

// digitPattern 答案含数字即触发自检
var digitPattern = regexp.MustCompile(`\d`)

// SelfCorrector 自我纠错器
//
// 先判断是否值得自检，再让 LLM 审查并按需改写。
// 纠错调用失败时保留原稿，不向上抛出。
type SelfCorrector struct {
	provider llm.Provider
	cfg      config.CorrectionConfig
	logger   *slog.Logger
}

// NewSelfCorrector 创建自我纠错器
func NewSelfCorrector(provider llm.Provider, cfg config.CorrectionConfig, logger *slog.Logger) *SelfCorrector {
	if cfg.TrustedToolWords <= 0 {
		cfg.TrustedToolWords = 80
	}
	if cfg.LongAnswerWords <= 0 {
		cfg.LongAnswerWords = 120
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SelfCorrector{provider: provider, cfg: cfg, logger: logger}
}

// NeedsCorrection 判断答案是否值得自检
//
// 短的工具答案直接信任；否则查询含算术线索、答案过长
// 或含数字时触发。
func (c *SelfCorrector) NeedsCorrection(query, answer string, toolSourced bool) bool {
	words := len(strings.Fields(answer))

	if toolSourced && words <= c.cfg.TrustedToolWords {
		return false
	}

	q := strings.ToLower(query)
	for _, trigger := range correctionTriggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}

	if words > c.cfg.LongAnswerWords {
		return true
	}

	return digitPattern.MatchString(answer)
}

// Correct 让 LLM 审查草稿并按需改写
//
// 审查结论为 "No errors detected" 时原样返回草稿。
func (c *SelfCorrector) Correct(ctx context.Context, systemPrompt, query, draft string,
	contextMsgs []message.Message) (string, error) {

	report, err := c.chat(ctx, systemPrompt,
		fmt.Sprintf(reviewPromptFormat, query, draft), contextMsgs)
	if err != nil {
		return "", err
	}

	if strings.Contains(strings.ToLower(report), "no errors detected") {
		return draft, nil
	}

	return c.chat(ctx, systemPrompt,
		fmt.Sprintf(rewritePromptFormat, report, draft), contextMsgs)
}

// chat 发起一次带系统指令的 LLM 调用
func (c *SelfCorrector) chat(ctx context.Context, systemPrompt, instruction string,
	contextMsgs []message.Message) (string, error) {

	return llm.Complete(ctx, c.provider, withContext(systemPrompt, instruction, contextMsgs))
}
