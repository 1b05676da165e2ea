package llm

import (
	"fmt"

	"github.com/easyops/studybuddy-go/pkg/core/config"
)

// FromConfig 从配置创建 LLM Provider
func FromConfig(cfg config.LLMConfig) (Provider, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	primary, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	// 如果有备用配置，创建 FallbackProvider
	if cfg.Fallback != nil {
		fallback, err := FromConfig(*cfg.Fallback)
		if err != nil {
			return nil, fmt.Errorf("failed to create fallback provider: %w", err)
		}
		return NewFallbackProvider(primary, []Provider{fallback}), nil
	}

	return primary, nil
}

// createProviderFromConfig 根据配置创建特定提供商
func createProviderFromConfig(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return createOpenAIFromConfig(cfg)
	case config.ProviderOllama:
		return createOllamaFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

// createOpenAIFromConfig 从配置创建 OpenAI 客户端
func createOpenAIFromConfig(cfg config.LLMConfig) (*OpenAIClient, error) {
	opts := []Option{
		WithModel(cfg.Model),
		WithEmbeddingModel(cfg.EmbeddingModel),
		WithTimeout(cfg.Timeout),
		WithMaxRetries(cfg.MaxRetries),
		WithRetryDelay(cfg.RetryDelay),
		WithTemperature(cfg.Temperature),
		WithMaxTokens(cfg.MaxTokens),
	}

	if cfg.APIKey != "" {
		opts = append(opts, WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}

	return NewOpenAI(opts...)
}

// createOllamaFromConfig 从配置创建 Ollama 客户端
func createOllamaFromConfig(cfg config.LLMConfig) (*OllamaClient, error) {
	opts := []OllamaOption{}

	if cfg.BaseURL != "" {
		opts = append(opts, WithOllamaBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, WithOllamaModel(cfg.Model))
	}
	if cfg.EmbeddingModel != "" {
		opts = append(opts, WithOllamaEmbedModel(cfg.EmbeddingModel))
	}

	return NewOllamaClient(opts...), nil
}

// MustFromConfig 从配置创建 Provider，失败时 panic
func MustFromConfig(cfg config.LLMConfig) Provider {
	provider, err := FromConfig(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create provider from config: %v", err))
	}
	return provider
}
