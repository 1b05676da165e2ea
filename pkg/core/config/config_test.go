package config_test

import (
	"errors"
	"math"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/core/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Context.MaxTokens != 3000 {
		t.Fatalf("expected default context budget 3000, got %d", cfg.Context.MaxTokens)
	}
	if cfg.Context.MaxRecent != 3 || cfg.Context.MaxRelevant != 3 {
		t.Fatalf("unexpected context defaults: %+v", cfg.Context)
	}
	if cfg.Correction.TrustedToolWords != 80 {
		t.Fatalf("expected trusted tool words 80, got %d", cfg.Correction.TrustedToolWords)
	}
	if cfg.Correction.LongAnswerWords != 120 {
		t.Fatalf("expected long answer words 120, got %d", cfg.Correction.LongAnswerWords)
	}
	if cfg.Guardrail.ToxicityThreshold != 0.45 {
		t.Fatalf("expected toxicity threshold 0.45, got %v", cfg.Guardrail.ToxicityThreshold)
	}
	if cfg.History.Backend != "json" {
		t.Fatalf("expected json backend, got %q", cfg.History.Backend)
	}
	if cfg.Observability.SampleRate != 1.0 {
		t.Fatalf("expected sample rate 1.0, got %v", cfg.Observability.SampleRate)
	}
}

func TestDefaultScorerConfig(t *testing.T) {
	cfg := config.DefaultScorerConfig()

	if math.Abs(cfg.Sum()-1.0) > 1e-9 {
		t.Fatalf("expected weights to sum to 1.0, got %v", cfg.Sum())
	}
	if cfg.QueryWeight != 0.25 || cfg.ContextWeight != 0.25 || cfg.OverlapWeight != 0.25 {
		t.Fatalf("unexpected similarity weights: %+v", cfg)
	}
	if cfg.LengthWeight != 0.15 || cfg.ClarityWeight != 0.10 {
		t.Fatalf("unexpected bonus weights: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default weights must validate: %v", err)
	}
}

func TestScorerConfig_Validate(t *testing.T) {
	negative := config.ScorerConfig{QueryWeight: -0.1, ContextWeight: 0.5}
	if err := negative.Validate(); !errors.Is(err, config.ErrNegativeWeight) {
		t.Fatalf("expected ErrNegativeWeight, got %v", err)
	}

	excessive := config.ScorerConfig{
		QueryWeight: 0.5, ContextWeight: 0.5, OverlapWeight: 0.5,
	}
	if err := excessive.Validate(); !errors.Is(err, config.ErrWeightSumExceeded) {
		t.Fatalf("expected ErrWeightSumExceeded, got %v", err)
	}
}

func TestScorerConfig_IsZero(t *testing.T) {
	if !(config.ScorerConfig{}).IsZero() {
		t.Fatal("expected zero value to report IsZero")
	}
	if (config.ScorerConfig{QueryWeight: 0.1}).IsZero() {
		t.Fatal("expected configured weights not to report IsZero")
	}
}

func TestLLMConfig_Validate(t *testing.T) {
	missing := config.LLMConfig{Provider: config.ProviderOpenAI}
	if err := missing.Validate(); !errors.Is(err, config.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	ollama := config.LLMConfig{Provider: config.ProviderOllama}.WithDefaults()
	if err := ollama.Validate(); err != nil {
		t.Fatalf("ollama needs no API key, got %v", err)
	}
}
