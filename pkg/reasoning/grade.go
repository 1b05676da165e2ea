package reasoning

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

// gradePromptFormat 快速评分指令，回复只要一个 0-10 的分数
const gradePromptFormat = "You are an impartial evaluator.\nQ: %s\nA: %s\n\n" +
	"Give a single line with ONLY a score from 0 (terrible) to 10 (perfect)."

// neutralGrade 评分调用失败时的中性分
const neutralGrade = 5.0

// llmGrade 让 LLM 对答案打 0-10 分
//
// 任何失败（调用出错、回复不是数字）都返回中性分，
// 决断逻辑因此永不被评分问题阻断。
func llmGrade(ctx context.Context, provider llm.Provider, query, answer string) float64 {
	content, err := llm.Complete(ctx, provider, []message.Message{
		message.NewSystemMessage(fmt.Sprintf(gradePromptFormat, query, answer)),
	})
	if err != nil {
		return neutralGrade
	}

	grade, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return neutralGrade
	}

	if grade < 0 {
		return 0
	}
	if grade > 10 {
		return 10
	}
	return grade
}
