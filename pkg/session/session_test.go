package session_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
	"github.com/easyops/studybuddy-go/pkg/core/llm"
	"github.com/easyops/studybuddy-go/pkg/core/message"
	"github.com/easyops/studybuddy-go/pkg/guardrail"
	"github.com/easyops/studybuddy-go/pkg/history"
	"github.com/easyops/studybuddy-go/pkg/otel"
	"github.com/easyops/studybuddy-go/pkg/rag"
	"github.com/easyops/studybuddy-go/pkg/reasoning"
	"github.com/easyops/studybuddy-go/pkg/session"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

// mockProvider implements llm.Provider with a fixed reply
type mockProvider struct {
	content string
	calls   int
}

func (m *mockProvider) Name() string  { return "mock" }
func (m *mockProvider) Model() string { return "mock-model" }
func (m *mockProvider) Close() error  { return nil }

func (m *mockProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.calls++
	return llm.Response{Content: m.content, FinishReason: "stop"}, nil
}

func (m *mockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 8)
	}
	return out, nil
}

type fixture struct {
	session *session.Session
	store   *history.JSONFileStore
	metrics *otel.InMemoryMetrics
}

func newFixture(t *testing.T, provider llm.Provider) fixture {
	t.Helper()

	dir := t.TempDir()
	store := history.NewJSONFileStore(filepath.Join(dir, "history.json"))

	gate := guardrail.NewGate(
		guardrail.WithAuditLog(filepath.Join(dir, "guardrail_log.txt")))

	optimizer := contextopt.NewOptimizer(
		contextopt.WithTokenCounter(contextopt.NewEstimatedCounter()))
	engine := toolchain.NewEngine(provider)
	framework := reasoning.NewFramework(provider, reasoning.WithGate(gate))
	metrics := otel.NewInMemoryMetrics()

	sess := session.New(store, optimizer, engine, framework,
		session.WithRetriever(rag.NewMemoryRetriever("rain forms when vapor condenses")),
		session.WithMetrics(metrics),
	)

	return fixture{session: sess, store: store, metrics: metrics}
}

func TestTurn_CompliantAnswerRecorded(t *testing.T) {
	provider := &mockProvider{content: "The capital of France is Paris and it is a lovely city"}
	fx := newFixture(t, provider)
	ctx := context.Background()

	result, err := fx.session.Turn(ctx, "capital of france")
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if !result.Compliant {
		t.Fatalf("expected compliant result, got reason %q", result.Reason)
	}
	if !strings.HasPrefix(result.Text, "Response (via") {
		t.Fatalf("unexpected response text %q", result.Text)
	}

	msgs, err := fx.store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected user and assistant messages, got %d", len(msgs))
	}
	if msgs[0].Role != message.RoleUser || msgs[1].Role != message.RoleAssistant {
		t.Fatalf("unexpected roles in history: %s, %s", msgs[0].Role, msgs[1].Role)
	}

	if got := fx.metrics.CounterValue(otel.MetricPipelineRuns); got != 1 {
		t.Fatalf("expected 1 pipeline run, got %d", got)
	}
	if got := fx.metrics.CounterValue(otel.MetricIntentDetected); got != 1 {
		t.Fatalf("expected 1 intent count, got %d", got)
	}
	if scores := fx.metrics.HistogramValues(otel.MetricCandidateScore); len(scores) != 1 {
		t.Fatalf("expected 1 winner score sample, got %d", len(scores))
	}
}

func TestTurn_RejectionRetractsUserMessage(t *testing.T) {
	provider := &mockProvider{content: "a reply that encourages violence"}
	fx := newFixture(t, provider)
	ctx := context.Background()

	result, err := fx.session.Turn(ctx, "say something nasty")
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if result.Compliant {
		t.Fatal("expected compliance rejection")
	}
	if !strings.Contains(result.Text, "ethical concerns") {
		t.Fatalf("expected refusal text, got %q", result.Text)
	}

	msgs, err := fx.store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected rejected turn to leave no history, got %d messages", len(msgs))
	}

	if got := fx.metrics.CounterValue(otel.MetricComplianceRejections); got != 1 {
		t.Fatalf("expected 1 rejection count, got %d", got)
	}
	if got := fx.metrics.CounterValue(otel.MetricPipelineRuns); got != 0 {
		t.Fatalf("rejected turns must not count as completed runs, got %d", got)
	}
}

func TestTurn_HistoryGrowsAcrossTurns(t *testing.T) {
	provider := &mockProvider{content: "a plain and harmless reply about the weather today"}
	fx := newFixture(t, provider)
	ctx := context.Background()

	if _, err := fx.session.Turn(ctx, "first question about weather"); err != nil {
		t.Fatalf("first turn failed: %v", err)
	}
	if _, err := fx.session.Turn(ctx, "second question about weather"); err != nil {
		t.Fatalf("second turn failed: %v", err)
	}

	msgs, err := fx.store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(msgs))
	}
}
