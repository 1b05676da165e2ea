// Package config 提供配置加载和管理功能
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config 全局配置结构
type Config struct {
	// LLM LLM 配置
	LLM LLMConfig `koanf:"llm"`
	// Context 上下文窗口优化配置
	Context ContextConfig `koanf:"context"`
	// Scorer 置信度评分配置
	Scorer ScorerConfig `koanf:"scorer"`
	// Correction 自我修正配置
	Correction CorrectionConfig `koanf:"correction"`
	// Guardrail 合规检查配置
	Guardrail GuardrailConfig `koanf:"guardrail"`
	// History 历史存储配置
	History HistoryConfig `koanf:"history"`
	// Observability 可观测性配置
	Observability ObservabilityConfig `koanf:"observability"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	// Enabled 是否启用
	Enabled bool `koanf:"enabled"`
	// ServiceName 服务名称
	ServiceName string `koanf:"service_name"`
	// TracerEndpoint 追踪端点
	TracerEndpoint string `koanf:"tracer_endpoint"`
	// MetricsEndpoint 指标端点
	MetricsEndpoint string `koanf:"metrics_endpoint"`
	// SampleRate 采样率 [0, 1]
	SampleRate float64 `koanf:"sample_rate"`
}

// Loader 配置加载器
type Loader struct {
	k *koanf.Koanf
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		k: koanf.New("."),
	}
}

// LoadEnv 从环境变量加载配置
func (l *Loader) LoadEnv(prefix string) error {
	return l.k.Load(env.Provider(prefix, ".", func(s string) string {
		// 转换环境变量名: STUDYBUDDY_LLM_API_KEY -> llm.api_key
		s = strings.TrimPrefix(s, prefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "_", ".")
		return s
	}), nil)
}

// Unmarshal 解析配置到结构体
func (l *Loader) Unmarshal(cfg *Config) error {
	return l.k.Unmarshal("", cfg)
}

// GetString 获取字符串配置值
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt 获取整数配置值
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetBool 获取布尔配置值
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// GetDuration 获取时间间隔配置值
func (l *Loader) GetDuration(key string) time.Duration {
	return l.k.Duration(key)
}

// Load 加载完整配置（环境变量 + 默认值）
func Load() (*Config, error) {
	loader := NewLoader()

	if err := loader.LoadEnv("STUDYBUDDY_"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Scorer.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults 应用默认配置值
func applyDefaults(cfg *Config) {
	// LLM 默认值
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.LLM.RetryDelay == 0 {
		cfg.LLM.RetryDelay = time.Second
	}

	// 上下文窗口默认值
	if cfg.Context.MaxTokens == 0 {
		cfg.Context.MaxTokens = 3000
	}
	if cfg.Context.MaxRecent == 0 {
		cfg.Context.MaxRecent = 3
	}
	if cfg.Context.MaxRelevant == 0 {
		cfg.Context.MaxRelevant = 3
	}

	// 评分权重默认值（历史上存在两套分配，这里取后一版）
	if cfg.Scorer.IsZero() {
		cfg.Scorer = DefaultScorerConfig()
	}

	// 自我修正默认值
	if cfg.Correction.TrustedToolWords == 0 {
		cfg.Correction.TrustedToolWords = 80
	}
	if cfg.Correction.LongAnswerWords == 0 {
		cfg.Correction.LongAnswerWords = 120
	}

	// 合规默认值
	if cfg.Guardrail.ToxicityThreshold == 0 {
		cfg.Guardrail.ToxicityThreshold = 0.45
	}
	if cfg.Guardrail.AuditLogPath == "" {
		cfg.Guardrail.AuditLogPath = "guardrail_log.txt"
	}

	// 历史存储默认值
	if cfg.History.Backend == "" {
		cfg.History.Backend = "json"
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "conversation_history.json"
	}
	if cfg.History.SummaryTokens == 0 {
		cfg.History.SummaryTokens = 200
	}

	// Observability 默认值
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 1.0
	}
}
