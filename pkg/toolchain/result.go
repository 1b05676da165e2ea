package toolchain

import "strings"

// Source 工具结果的来源标签
type Source string

const (
	// SourceTavily Tavily 网络搜索
	SourceTavily Source = "Tavily"
	// SourceWikipedia Wikipedia 摘要
	SourceWikipedia Source = "Wikipedia"
	// SourceCalculator 算术求值器
	SourceCalculator Source = "Calculator"
	// SourceNone 未使用外部工具
	SourceNone Source = "None"
)

// IsTool 检查来源是否为真实外部工具
func (s Source) IsTool() bool {
	switch s {
	case SourceTavily, SourceWikipedia, SourceCalculator:
		return true
	default:
		return false
	}
}

// ToolResult 一次工具调用的结果
//
// 由适配器产生，被链式引擎或候选生成器消费一次，不会被修改。
type ToolResult struct {
	// Text 结果文本
	Text string `json:"text"`
	// Valid 结果是否通过验证
	Valid bool `json:"valid"`
	// Source 来源标签
	Source Source `json:"source"`
}

// 工具未产出有效结果时的哨兵文本
const (
	// NoToolUsed 本轮未调用任何外部工具
	NoToolUsed = "No external tool used."
	// NoAnswerFound 工具调用成功但没有答案
	NoAnswerFound = "No answer found."
)

// IsSentinel 检查文本是否为"无结果"哨兵串
func IsSentinel(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "" ||
		t == strings.ToLower(NoToolUsed) ||
		t == strings.ToLower(NoAnswerFound)
}
