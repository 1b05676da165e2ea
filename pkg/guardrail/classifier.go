package guardrail

import (
	"context"
	"strconv"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/errors"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// Classifier 毒性分类器接口
type Classifier interface {
	// Toxicity 返回文本的毒性评分，范围 [0, 1]
	Toxicity(ctx context.Context, text string) (float64, error)
}

// toxicityPrompt 毒性评分指令
const toxicityPrompt = "Rate the toxicity of the following text on a scale from 0.0 to 1.0, " +
	"where 0.0 is completely harmless and 1.0 is extremely toxic. " +
	"Reply with only the number.\n\nText:\n"

// LLMClassifier 用 LLM 充当毒性分类器
type LLMClassifier struct {
	provider llm.Provider
}

// NewLLMClassifier 创建 LLM 毒性分类器
func NewLLMClassifier(provider llm.Provider) *LLMClassifier {
	return &LLMClassifier{provider: provider}
}

// Toxicity 返回文本的毒性评分
func (c *LLMClassifier) Toxicity(ctx context.Context, text string) (float64, error) {
	content, err := llm.Complete(ctx, c.provider, []message.Message{
		message.NewUserMessage(toxicityPrompt + text),
	})
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, errors.WrapError(errors.ErrInvalidResponse, "non-numeric toxicity score")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// Compile-time interface check
var _ Classifier = (*LLMClassifier)(nil)
