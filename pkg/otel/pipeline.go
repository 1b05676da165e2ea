package otel

import "go.opentelemetry.io/otel/attribute"

// 管线指标名称
const (
	// MetricPipelineRuns 计数器: 管线执行次数
	MetricPipelineRuns = "pipeline.runs"
	// MetricPipelineRunDuration 直方图: 管线端到端耗时(ms)
	MetricPipelineRunDuration = "pipeline.run.duration"
	// MetricStageDuration 直方图: 单阶段耗时(ms)
	MetricStageDuration = "pipeline.stage.duration"

	// MetricIntentDetected 计数器: 按意图分类的查询次数
	MetricIntentDetected = "intent.detected"
	// MetricToolCalls 计数器: 工具调用次数
	MetricToolCalls = "tool.calls"
	// MetricToolErrors 计数器: 工具调用失败次数
	MetricToolErrors = "tool.errors"

	// MetricCandidatesGenerated 直方图: 每轮生成的候选数
	MetricCandidatesGenerated = "candidates.generated"
	// MetricCandidateScore 直方图: 胜出候选的置信度
	MetricCandidateScore = "candidates.winner.score"
	// MetricCorrectionRuns 计数器: 自我纠错触发次数
	MetricCorrectionRuns = "correction.runs"

	// MetricComplianceRejections 计数器: 合规拒绝次数
	MetricComplianceRejections = "compliance.rejections"

	// MetricLLMRequests 计数器: LLM 请求次数
	MetricLLMRequests = "llm.requests"
	// MetricLLMTokensTotal 计数器: 总 Token 数
	MetricLLMTokensTotal = "llm.tokens.total"
)

// 语义属性键
const (
	// AttrIntent 检测到的查询意图
	AttrIntent = "query.intent"
	// AttrToolSource 产出结果的工具
	AttrToolSource = "tool.source"
	// AttrStrategy 胜出的候选策略
	AttrStrategy = "candidate.strategy"
	// AttrScore 胜出候选的置信度
	AttrScore = "candidate.score"
	// AttrStage 管线阶段名称
	AttrStage = "pipeline.stage"
	// AttrComplianceReason 合规结论说明
	AttrComplianceReason = "compliance.reason"
	// AttrLLMProvider LLM 提供商
	AttrLLMProvider = "llm.provider"
	// AttrLLMModel LLM 模型
	AttrLLMModel = "llm.model"
)

// Intent 创建意图属性
func Intent(intent string) attribute.KeyValue {
	return attribute.String(AttrIntent, intent)
}

// ToolSource 创建工具来源属性
func ToolSource(source string) attribute.KeyValue {
	return attribute.String(AttrToolSource, source)
}

// Strategy 创建策略属性
func Strategy(strategy string) attribute.KeyValue {
	return attribute.String(AttrStrategy, strategy)
}

// Score 创建置信度属性
func Score(score float64) attribute.KeyValue {
	return attribute.Float64(AttrScore, score)
}

// Stage 创建管线阶段属性
func Stage(stage string) attribute.KeyValue {
	return attribute.String(AttrStage, stage)
}

// ComplianceReason 创建合规说明属性
func ComplianceReason(reason string) attribute.KeyValue {
	return attribute.String(AttrComplianceReason, reason)
}

// LLMProvider 创建 LLM 提供商属性
func LLMProvider(provider string) attribute.KeyValue {
	return attribute.String(AttrLLMProvider, provider)
}

// LLMModel 创建 LLM 模型属性
func LLMModel(model string) attribute.KeyValue {
	return attribute.String(AttrLLMModel, model)
}
