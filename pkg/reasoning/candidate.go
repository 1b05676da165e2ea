// Package reasoning 实现多候选生成、置信度评分与自我纠错的推理管线
package reasoning

// Strategy 候选答案的生成策略
type Strategy string

const (
	// StrategyRAGTool 结合检索笔记与工具输出的证据式回答
	StrategyRAGTool Strategy = "RAG+Tool"
	// StrategyPlanExecuteRefine 计划-执行-精炼三段式回答
	StrategyPlanExecuteRefine Strategy = "Plan-Execute-Refine"
	// StrategyToolOnly 直接采用工具原始输出
	StrategyToolOnly Strategy = "Tool-only"
	// StrategyGeneralLLM 无附加证据的通用 LLM 回答
	StrategyGeneralLLM Strategy = "General-LLM"
)

// IsValid 检查 Strategy 是否为有效值
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyRAGTool, StrategyPlanExecuteRefine, StrategyToolOnly, StrategyGeneralLLM:
		return true
	default:
		return false
	}
}

// IsToolSourced 判断策略的文本是否直接来自外部工具
func (s Strategy) IsToolSourced() bool {
	return s == StrategyToolOnly
}

// Candidate 一条候选答案
type Candidate struct {
	// Strategy 生成策略
	Strategy Strategy
	// Text 答案文本
	Text string
	// Score 置信度评分，范围 [0, 1]
	Score float64
}
