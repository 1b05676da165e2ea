package guardrail_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/guardrail"
)

// stubClassifier implements guardrail.Classifier with a fixed score
type stubClassifier struct {
	score float64
	err   error
}

func (s *stubClassifier) Toxicity(ctx context.Context, text string) (float64, error) {
	return s.score, s.err
}

func newGate(t *testing.T, opts ...guardrail.GateOption) (*guardrail.Gate, string) {
	t.Helper()
	auditPath := filepath.Join(t.TempDir(), "guardrail_log.txt")
	base := []guardrail.GateOption{guardrail.WithAuditLog(auditPath)}
	return guardrail.NewGate(append(base, opts...)...), auditPath
}

func TestGate_CompliantText(t *testing.T) {
	gate, auditPath := newGate(t)

	verdict := gate.Check(context.Background(), "Photosynthesis converts light into chemical energy.")
	if !verdict.Compliant {
		t.Fatalf("expected compliant verdict, got reason %q", verdict.Reason)
	}
	if verdict.Reason != "Compliant" {
		t.Fatalf("expected 'Compliant' reason, got %q", verdict.Reason)
	}

	if _, err := os.Stat(auditPath); !os.IsNotExist(err) {
		t.Fatal("compliant text must not produce an audit entry")
	}
}

func TestGate_SensitiveTerm(t *testing.T) {
	gate, auditPath := newGate(t)

	verdict := gate.Check(context.Background(), "This text promotes violence against others.")
	if verdict.Compliant {
		t.Fatal("expected rejection for sensitive term")
	}
	if verdict.Reason != "Response contains sensitive term: violence" {
		t.Fatalf("unexpected reason %q", verdict.Reason)
	}

	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("expected audit entry, got %v", err)
	}
	entry := string(data)
	if !strings.Contains(entry, "[Sensitive term: violence]") {
		t.Fatalf("audit entry missing reason header: %q", entry)
	}
	if !strings.Contains(entry, strings.Repeat("-", 60)) {
		t.Fatal("audit entry missing separator line")
	}
}

func TestGate_BiasPhrase(t *testing.T) {
	gate, _ := newGate(t)

	verdict := gate.Check(context.Background(), "Group A is better than group B in every way.")
	if verdict.Compliant {
		t.Fatal("expected rejection for bias phrase")
	}
	if verdict.Reason != "Potential bias detected" {
		t.Fatalf("unexpected reason %q", verdict.Reason)
	}
}

func TestGate_ToxicityAboveThreshold(t *testing.T) {
	gate, _ := newGate(t, guardrail.WithClassifier(&stubClassifier{score: 0.9}))

	verdict := gate.Check(context.Background(), "a perfectly ordinary sentence")
	if verdict.Compliant {
		t.Fatal("expected rejection above toxicity threshold")
	}
	if verdict.Reason != "Potentially toxic content" {
		t.Fatalf("unexpected reason %q", verdict.Reason)
	}
}

func TestGate_ToxicityBelowThreshold(t *testing.T) {
	gate, _ := newGate(t, guardrail.WithClassifier(&stubClassifier{score: 0.1}))

	verdict := gate.Check(context.Background(), "a perfectly ordinary sentence")
	if !verdict.Compliant {
		t.Fatalf("expected compliance below threshold, got %q", verdict.Reason)
	}
}

func TestGate_ClassifierFailureFallsBackToRules(t *testing.T) {
	gate, _ := newGate(t, guardrail.WithClassifier(&stubClassifier{err: errors.New("service down")}))

	clean := gate.Check(context.Background(), "a perfectly ordinary sentence")
	if !clean.Compliant {
		t.Fatalf("rule checks should pass clean text, got %q", clean.Reason)
	}

	dirty := gate.Check(context.Background(), "this contains hate speech")
	if dirty.Compliant {
		t.Fatal("rule checks must still reject sensitive terms")
	}
}

func TestGate_CustomTerms(t *testing.T) {
	gate, _ := newGate(t, guardrail.WithSensitiveTerms([]string{"forbidden"}))

	if v := gate.Check(context.Background(), "this mentions violence"); !v.Compliant {
		t.Fatal("custom term list replaces the default list")
	}
	if v := gate.Check(context.Background(), "this is forbidden knowledge"); v.Compliant {
		t.Fatal("expected rejection for custom term")
	}
}
