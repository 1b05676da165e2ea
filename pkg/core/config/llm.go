package config

import "time"

// Provider LLM 提供商类型
type Provider string

const (
	// ProviderOpenAI OpenAI 提供商
	ProviderOpenAI Provider = "openai"
	// ProviderOllama Ollama 提供商
	ProviderOllama Provider = "ollama"
)

// IsValid 检查提供商是否有效
func (p Provider) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderOllama:
		return true
	default:
		return false
	}
}

// LLMConfig LLM 配置
type LLMConfig struct {
	// Provider 提供商类型
	Provider Provider `koanf:"provider"`
	// APIKey API 密钥
	APIKey string `koanf:"api_key"`
	// BaseURL 自定义 API 端点
	BaseURL string `koanf:"base_url"`
	// Model 模型名称
	Model string `koanf:"model"`
	// EmbeddingModel 嵌入模型名称
	EmbeddingModel string `koanf:"embedding_model"`
	// Timeout 请求超时
	Timeout time.Duration `koanf:"timeout"`
	// MaxRetries 最大重试次数
	MaxRetries int `koanf:"max_retries"`
	// RetryDelay 重试间隔基数
	RetryDelay time.Duration `koanf:"retry_delay"`
	// Temperature 默认温度
	Temperature float64 `koanf:"temperature"`
	// MaxTokens 默认最大输出 token
	MaxTokens int `koanf:"max_tokens"`
	// Fallback 备用提供商配置（可选）
	Fallback *LLMConfig `koanf:"fallback"`
}

// WithDefaults 返回应用默认值后的配置副本
func (c LLMConfig) WithDefaults() LLMConfig {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		switch c.Provider {
		case ProviderOllama:
			c.Model = "llama3.2"
		default:
			c.Model = "gpt-4o-mini"
		}
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	return c
}

// Validate 验证配置有效性
func (c LLMConfig) Validate() error {
	if !c.Provider.IsValid() {
		return ErrUnknownProvider
	}
	if c.Provider == ProviderOpenAI && c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
