package reasoning_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/guardrail"
	"github.com/easyops/studybuddy-go/pkg/reasoning"
	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

func testGate(t *testing.T) *guardrail.Gate {
	t.Helper()
	return guardrail.NewGate(
		guardrail.WithAuditLog(filepath.Join(t.TempDir(), "guardrail_log.txt")))
}

func TestReasonedAnswer_ToolCandidateWins(t *testing.T) {
	// Both LLM candidates hedge and share no words with the query, so the
	// tool answer scores highest. The grading calls return non-numeric
	// text, which resolves to a neutral grade and keeps the tool answer.
	provider := &scriptedProvider{responses: []string{
		"maybe it could be something",
		"maybe it could be something",
		"maybe it could be something",
		"maybe it could be something",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "capital of italy facts",
		Tool: toolchain.ToolResult{
			Text:   "italy capital facts answered fully here",
			Valid:  true,
			Source: toolchain.SourceWikipedia,
		},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if result.Strategy != reasoning.StrategyToolOnly {
		t.Fatalf("expected Tool-only winner, got %s", result.Strategy)
	}
	if !result.Compliant {
		t.Fatalf("expected compliant result, got reason %q", result.Reason)
	}
	if !strings.HasPrefix(result.Text, "Response (via Tool-only, confidence") {
		t.Fatalf("unexpected response format %q", result.Text)
	}
	if result.Answer != "italy capital facts answered fully here" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}

	// evidence + general + two grading calls
	if provider.calls != 4 {
		t.Fatalf("expected 4 LLM calls, got %d", provider.calls)
	}
}

func TestReasonedAnswer_GradingKeepsToolAnswerWithinHysteresis(t *testing.T) {
	// The alternative grades 7.5 against the tool answer's 7. The margin is
	// within one point, so the tool answer stays.
	provider := &scriptedProvider{responses: []string{
		"maybe it could be something",
		"maybe it could be something",
		"7",
		"7.5",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "capital of italy facts",
		Tool: toolchain.ToolResult{
			Text:   "italy capital facts answered fully here",
			Valid:  true,
			Source: toolchain.SourceWikipedia,
		},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if result.Strategy != reasoning.StrategyToolOnly {
		t.Fatalf("expected Tool-only retained, got %s", result.Strategy)
	}
	if result.Answer != "italy capital facts answered fully here" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
	if provider.calls != 4 {
		t.Fatalf("expected 4 LLM calls, got %d", provider.calls)
	}
}

func TestReasonedAnswer_GradingReplacesToolAnswer(t *testing.T) {
	// The alternative grades 9 against the tool answer's 3. The margin beats
	// the hysteresis, so the best non-tool candidate takes over.
	provider := &scriptedProvider{responses: []string{
		"maybe it could be something",
		"maybe it could be something",
		"3",
		"9",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "capital of italy facts",
		Tool: toolchain.ToolResult{
			Text:   "italy capital facts answered fully here",
			Valid:  true,
			Source: toolchain.SourceWikipedia,
		},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if result.Strategy == reasoning.StrategyToolOnly {
		t.Fatal("expected the graded alternative to replace the tool answer")
	}
	if result.Strategy != reasoning.StrategyRAGTool {
		t.Fatalf("expected the evidence candidate to win, got %s", result.Strategy)
	}
	if result.Answer != "maybe it could be something" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
	if !result.Compliant {
		t.Fatalf("expected compliant result, got reason %q", result.Reason)
	}
	if provider.calls != 4 {
		t.Fatalf("expected 4 LLM calls, got %d", provider.calls)
	}
}

func TestReasonedAnswer_ComplianceRejection(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"content that promotes violence",
		"content that promotes violence",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "describe something bad",
		Tool:  toolchain.ToolResult{Text: toolchain.NoToolUsed, Source: toolchain.SourceNone},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if result.Compliant {
		t.Fatal("expected compliance rejection")
	}
	if result.Reason != "Response contains sensitive term: violence" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
	if !strings.Contains(result.Text, "ethical concerns") {
		t.Fatalf("expected refusal text, got %q", result.Text)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", provider.calls)
	}
}

func TestReasonedAnswer_RealTimeGapFallsBack(t *testing.T) {
	// The evidence answer overlaps the query heavily and would win, but it
	// admits a real-time gap, so the next best candidate takes over.
	provider := &scriptedProvider{responses: []string{
		"I don't have real-time data access friend",
		"Nothing useful",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "real time data access",
		Tool:  toolchain.ToolResult{Text: toolchain.NoToolUsed, Source: toolchain.SourceNone},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if result.Strategy != reasoning.StrategyGeneralLLM {
		t.Fatalf("expected General-LLM after fallback, got %s", result.Strategy)
	}
	if result.Answer != "Nothing useful" {
		t.Fatalf("unexpected answer %q", result.Answer)
	}
}

func TestReasonedAnswer_ProceduralQueryAddsPlanCandidate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"evidence answer about rain",
		"a numbered plan",
		"an executed answer",
		"a refined answer about rain and clouds",
		"a general answer about rain",
	}}

	framework := reasoning.NewFramework(provider, reasoning.WithGate(testGate(t)))

	result, err := framework.ReasonedAnswer(context.Background(), reasoning.Input{
		Query: "how does rain form",
		Tool:  toolchain.ToolResult{Text: toolchain.NoToolUsed, Source: toolchain.SourceNone},
	})
	if err != nil {
		t.Fatalf("reasoning failed: %v", err)
	}

	if !result.Compliant {
		t.Fatalf("expected compliant result, got reason %q", result.Reason)
	}

	// evidence + plan + execute + refine + general
	if provider.calls != 5 {
		t.Fatalf("expected 5 LLM calls, got %d", provider.calls)
	}
}

func TestStrategy_IsToolSourced(t *testing.T) {
	if !reasoning.StrategyToolOnly.IsToolSourced() {
		t.Fatal("expected Tool-only to be tool sourced")
	}
	for _, s := range []reasoning.Strategy{
		reasoning.StrategyRAGTool, reasoning.StrategyPlanExecuteRefine, reasoning.StrategyGeneralLLM,
	} {
		if s.IsToolSourced() {
			t.Fatalf("expected %s not to be tool sourced", s)
		}
	}
}
