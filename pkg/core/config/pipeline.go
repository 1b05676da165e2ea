package config

// ContextConfig 上下文窗口优化配置
type ContextConfig struct {
	// MaxTokens 上下文的 Token 硬上限
	MaxTokens int `koanf:"max_tokens"`
	// MaxRecent 始终尝试保留的最近消息条数
	MaxRecent int `koanf:"max_recent"`
	// MaxRelevant 按相关性挑选的消息条数上限
	MaxRelevant int `koanf:"max_relevant"`
	// Model Token 编码参照的模型名
	Model string `koanf:"model"`
}

// ScorerConfig 置信度评分的权重分配
//
// 各权重之和不得超过 1.0。每一项在对应因子上单调递增。
type ScorerConfig struct {
	// QueryWeight 回答与查询语义相似度的权重
	QueryWeight float64 `koanf:"query_weight"`
	// ContextWeight 回答与近期上下文语义相似度的权重
	ContextWeight float64 `koanf:"context_weight"`
	// OverlapWeight 词面重叠的权重
	OverlapWeight float64 `koanf:"overlap_weight"`
	// LengthWeight 长度适中加分的权重
	LengthWeight float64 `koanf:"length_weight"`
	// ClarityWeight 表述明确加分的权重
	ClarityWeight float64 `koanf:"clarity_weight"`
}

// DefaultScorerConfig 返回默认权重分配 25/25/25/15/10
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		QueryWeight:   0.25,
		ContextWeight: 0.25,
		OverlapWeight: 0.25,
		LengthWeight:  0.15,
		ClarityWeight: 0.10,
	}
}

// IsZero 检查是否未配置任何权重
func (c ScorerConfig) IsZero() bool {
	return c.QueryWeight == 0 && c.ContextWeight == 0 &&
		c.OverlapWeight == 0 && c.LengthWeight == 0 && c.ClarityWeight == 0
}

// Sum 返回权重总和
func (c ScorerConfig) Sum() float64 {
	return c.QueryWeight + c.ContextWeight + c.OverlapWeight +
		c.LengthWeight + c.ClarityWeight
}

// Validate 验证权重分配有效性
func (c ScorerConfig) Validate() error {
	if c.QueryWeight < 0 || c.ContextWeight < 0 || c.OverlapWeight < 0 ||
		c.LengthWeight < 0 || c.ClarityWeight < 0 {
		return ErrNegativeWeight
	}
	if c.Sum() > 1.0+1e-9 {
		return ErrWeightSumExceeded
	}
	return nil
}

// CorrectionConfig 自我修正门控配置
type CorrectionConfig struct {
	// TrustedToolWords 工具来源回答免检的词数上限
	TrustedToolWords int `koanf:"trusted_tool_words"`
	// LongAnswerWords 触发复查的回答词数阈值
	LongAnswerWords int `koanf:"long_answer_words"`
}

// GuardrailConfig 合规检查配置
type GuardrailConfig struct {
	// ToxicityThreshold 毒性分类器的拒绝阈值
	ToxicityThreshold float64 `koanf:"toxicity_threshold"`
	// SensitiveTerms 敏感词列表（为空时使用内置默认）
	SensitiveTerms []string `koanf:"sensitive_terms"`
	// BiasPhrases 偏见短语列表（为空时使用内置默认）
	BiasPhrases []string `koanf:"bias_phrases"`
	// AuditLogPath 审计日志文件路径
	AuditLogPath string `koanf:"audit_log_path"`
}

// HistoryConfig 历史存储配置
type HistoryConfig struct {
	// Backend 存储后端: json 或 sqlite
	Backend string `koanf:"backend"`
	// Path 存储文件路径
	Path string `koanf:"path"`
	// SummaryTokens 触发摘要的历史 Token 阈值
	SummaryTokens int `koanf:"summary_tokens"`
}
