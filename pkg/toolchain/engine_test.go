package toolchain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

// mockProvider implements llm.Provider for testing
type mockProvider struct {
	generateFn func(ctx context.Context, req llm.Request) (llm.Response, error)
	calls      int
}

func (m *mockProvider) Name() string  { return "mock" }
func (m *mockProvider) Model() string { return "mock-model" }
func (m *mockProvider) Close() error  { return nil }

func (m *mockProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.calls++
	if m.generateFn != nil {
		return m.generateFn(ctx, req)
	}
	return llm.Response{Content: "llm fallback answer", FinishReason: "stop"}, nil
}

func (m *mockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = make([]float32, 8)
	}
	return result, nil
}

// stubSearch implements toolchain.SearchAdapter
type stubSearch struct {
	result toolchain.ToolResult
	err    error
}

func (s *stubSearch) Search(ctx context.Context, query string) (toolchain.ToolResult, error) {
	return s.result, s.err
}

// stubLookup implements toolchain.LookupAdapter
type stubLookup struct {
	result toolchain.ToolResult
	err    error
}

func (s *stubLookup) Summary(ctx context.Context, topic string) (toolchain.ToolResult, error) {
	return s.result, s.err
}

func TestEngine_Calculator(t *testing.T) {
	engine := toolchain.NewEngine(&mockProvider{})

	result, err := engine.Run(context.Background(), "calculate 12 * 7")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "84" {
		t.Fatalf("expected '84', got %q", result.Text)
	}
	if result.Source != toolchain.SourceCalculator {
		t.Fatalf("expected Calculator source, got %s", result.Source)
	}
}

func TestEngine_Search(t *testing.T) {
	search := &stubSearch{
		result: toolchain.ToolResult{
			Text:   "search says hello",
			Valid:  true,
			Source: toolchain.SourceTavily,
		},
	}
	engine := toolchain.NewEngine(&mockProvider{}, toolchain.WithSearchAdapter(search))

	result, err := engine.Run(context.Background(), "search for something")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "search says hello" {
		t.Fatalf("unexpected result text %q", result.Text)
	}
}

func TestEngine_SearchFailureFallsBackToLLM(t *testing.T) {
	search := &stubSearch{err: errors.New("network down")}
	provider := &mockProvider{}
	engine := toolchain.NewEngine(provider, toolchain.WithSearchAdapter(search))

	result, err := engine.Run(context.Background(), "search for something")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(result.Text, "[Tavily failed:") {
		t.Fatalf("expected failure prefix, got %q", result.Text)
	}
	if result.Valid {
		t.Fatal("degraded result should not be valid")
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 LLM call, got %d", provider.calls)
	}
}

func TestEngine_WikiFallsBackToSearch(t *testing.T) {
	wiki := &stubLookup{err: errors.New("page fetch failed")}
	search := &stubSearch{
		result: toolchain.ToolResult{
			Text:   "search backup answer",
			Valid:  true,
			Source: toolchain.SourceTavily,
		},
	}
	engine := toolchain.NewEngine(&mockProvider{},
		toolchain.WithLookupAdapter(wiki),
		toolchain.WithSearchAdapter(search))

	result, err := engine.Run(context.Background(), "who is Alan Turing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "search backup answer" {
		t.Fatalf("expected search backup, got %q", result.Text)
	}
}

func TestEngine_WikiShortSummaryRejected(t *testing.T) {
	// A summary under ten words fails validation and triggers the fallback chain.
	wiki := &stubLookup{
		result: toolchain.ToolResult{Text: "Too short.", Valid: true, Source: toolchain.SourceWikipedia},
	}
	provider := &mockProvider{}
	engine := toolchain.NewEngine(provider, toolchain.WithLookupAdapter(wiki))

	result, err := engine.Run(context.Background(), "who is Alan Turing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(result.Text, "[Wiki and Tavily failed: summary failed validation] ") {
		t.Fatalf("expected validation failure prefix, got %q", result.Text)
	}
}

func TestEngine_CalcWithLookup(t *testing.T) {
	wiki := &stubLookup{
		result: toolchain.ToolResult{
			Text:   "The population of France is 67,000,000. It is a country in Western Europe known for its culture.",
			Valid:  true,
			Source: toolchain.SourceWikipedia,
		},
	}
	engine := toolchain.NewEngine(&mockProvider{}, toolchain.WithLookupAdapter(wiki))

	result, err := engine.Run(context.Background(), "Calculate 2 times the population of France")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "2 × 67000000 = 134000000" {
		t.Fatalf("unexpected result text %q", result.Text)
	}
	if !result.Valid {
		t.Fatal("expected valid result")
	}
	if result.Source != toolchain.SourceCalculator {
		t.Fatalf("expected Calculator source, got %s", result.Source)
	}
}

func TestEngine_CalcWithLookupNoAdapter(t *testing.T) {
	engine := toolchain.NewEngine(&mockProvider{})

	result, err := engine.Run(context.Background(), "Calculate 2 times the population of France")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(result.Text, "Could not fetch population data for") {
		t.Fatalf("unexpected result text %q", result.Text)
	}
	if result.Valid {
		t.Fatal("expected invalid result")
	}
}

func TestEngine_CalcWithLookupNoNumberInSummary(t *testing.T) {
	wiki := &stubLookup{
		result: toolchain.ToolResult{
			Text:   "France is a lovely country in Western Europe known for food, art and a rich long history.",
			Valid:  true,
			Source: toolchain.SourceWikipedia,
		},
	}
	engine := toolchain.NewEngine(&mockProvider{}, toolchain.WithLookupAdapter(wiki))

	result, err := engine.Run(context.Background(), "Calculate 2 times the population of France")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "No numeric population value found in the summary." {
		t.Fatalf("unexpected result text %q", result.Text)
	}
}

func TestEngine_FallbackLLM(t *testing.T) {
	provider := &mockProvider{}
	engine := toolchain.NewEngine(provider)

	result, err := engine.Run(context.Background(), "explain photosynthesis")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Text != "llm fallback answer" {
		t.Fatalf("unexpected result text %q", result.Text)
	}
	if !result.Valid {
		t.Fatal("clean fallback should be valid")
	}
	if result.Source != toolchain.SourceNone {
		t.Fatalf("expected None source, got %s", result.Source)
	}
}

func TestEngine_FallbackLLMError(t *testing.T) {
	provider := &mockProvider{
		generateFn: func(ctx context.Context, req llm.Request) (llm.Response, error) {
			return llm.Response{}, errors.New("provider down")
		},
	}
	engine := toolchain.NewEngine(provider)

	if _, err := engine.Run(context.Background(), "explain photosynthesis"); err == nil {
		t.Fatal("expected error when the LLM fallback itself fails")
	}
}
