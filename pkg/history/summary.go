package history

import (
	"context"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// summaryPrompt 摘要指令前缀
const summaryPrompt = "Summarize the following conversation in under 100 words:\n"

// Summarizer 长历史摘要器
//
// 全文 token 数低于阈值时直接返回原文，超过阈值时
// 调用 LLM 生成不超过 100 词的摘要。
type Summarizer struct {
	provider  llm.Provider
	counter   contextopt.TokenCounter
	threshold int
}

// NewSummarizer 创建摘要器
//
// threshold 非正时取默认值 200。
func NewSummarizer(provider llm.Provider, counter contextopt.TokenCounter, threshold int) *Summarizer {
	if counter == nil {
		counter = contextopt.DefaultTokenCounter()
	}
	if threshold <= 0 {
		threshold = 200
	}

	return &Summarizer{
		provider:  provider,
		counter:   counter,
		threshold: threshold,
	}
}

// Summarize 生成对话摘要
func (s *Summarizer) Summarize(ctx context.Context, msgs []message.Message) (string, error) {
	contents := make([]string, len(msgs))
	for i, m := range msgs {
		contents[i] = m.Content
	}
	fullText := strings.Join(contents, " ")

	if s.counter.Count(fullText) < s.threshold {
		return fullText, nil
	}

	return llm.Complete(ctx, s.provider, []message.Message{
		message.NewUserMessage(summaryPrompt + fullText),
	})
}
