package contextopt_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/contextopt"
	"github.com/easyops/studybuddy-go/pkg/core/message"
)

func newOptimizer(opts ...contextopt.OptimizerOption) *contextopt.Optimizer {
	base := []contextopt.OptimizerOption{
		contextopt.WithTokenCounter(contextopt.NewEstimatedCounter()),
	}
	return contextopt.NewOptimizer(append(base, opts...)...)
}

func history(contents ...string) []message.Message {
	msgs := make([]message.Message, len(contents))
	for i, c := range contents {
		msgs[i] = message.NewUserMessage(c)
	}
	return msgs
}

func contents(msgs []message.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestOptimize_RecentKept(t *testing.T) {
	opt := newOptimizer(contextopt.WithMaxRecent(2), contextopt.WithMaxRelevant(0))
	msgs := history("first topic", "second topic", "third topic", "fourth topic")

	window := opt.Optimize("unrelated query", msgs)

	got := contents(window)
	want := []string{"third topic", "fourth topic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOptimize_RelevantAdded(t *testing.T) {
	opt := newOptimizer(contextopt.WithMaxRecent(1), contextopt.WithMaxRelevant(2))
	msgs := history(
		"binary search runs in logarithmic time",
		"pasta recipes from northern Italy",
		"quick sort average complexity",
		"weather is nice today",
	)

	window := opt.Optimize("explain binary search complexity", msgs)

	got := contents(window)
	if got[0] != "weather is nice today" {
		t.Fatalf("expected most recent message first, got %v", got)
	}

	joined := strings.Join(got, " | ")
	if !strings.Contains(joined, "binary search") {
		t.Fatalf("expected relevant message in window, got %v", got)
	}
}

func TestOptimize_Dedupe(t *testing.T) {
	// The same message must not appear twice even when it is both
	// recent and relevant.
	opt := newOptimizer(contextopt.WithMaxRecent(3), contextopt.WithMaxRelevant(3))
	msgs := history("tell me about binary search")

	window := opt.Optimize("binary search", msgs)

	if len(window) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(window), contents(window))
	}
}

func TestOptimize_Idempotent(t *testing.T) {
	opt := newOptimizer()
	msgs := history(
		"binary search runs in logarithmic time",
		"pasta recipes from northern Italy",
		"quick sort average complexity",
	)

	first := opt.Optimize("binary search", msgs)
	second := opt.Optimize("binary search", msgs)

	if !reflect.DeepEqual(contents(first), contents(second)) {
		t.Fatalf("expected identical windows, got %v then %v",
			contents(first), contents(second))
	}
}

func TestOptimize_TokenBudget(t *testing.T) {
	counter := contextopt.NewEstimatedCounter()
	opt := newOptimizer(contextopt.WithMaxTokens(10))

	long := strings.Repeat("elaborate discussion of many things ", 20)
	msgs := history("short note", long)

	window := opt.Optimize("unrelated", msgs)

	total := 0
	for _, msg := range window {
		total += counter.Count(msg.Content)
	}
	if total > 10 {
		t.Fatalf("window exceeds token budget: %d", total)
	}
}

func TestOptimize_EmptyHistory(t *testing.T) {
	opt := newOptimizer()

	window := opt.Optimize("anything", nil)
	if len(window) != 0 {
		t.Fatalf("expected empty window, got %d messages", len(window))
	}
}

func TestTokenize(t *testing.T) {
	got := contextopt.Tokenize("Hello, World! 42 times")
	want := []string{"hello", "world", "42", "times"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestOverlapCount(t *testing.T) {
	if got := contextopt.OverlapCount("binary search tree", "search a binary tree"); got != 3 {
		t.Fatalf("expected overlap 3, got %d", got)
	}
	if got := contextopt.OverlapCount("", "anything"); got != 0 {
		t.Fatalf("expected overlap 0 for empty text, got %d", got)
	}
}

func TestOverlapRatio(t *testing.T) {
	if got := contextopt.OverlapRatio("binary search", "binary search"); got != 1.0 {
		t.Fatalf("expected ratio 1.0, got %v", got)
	}
	if got := contextopt.OverlapRatio("binary search", "cooking pasta"); got != 0.0 {
		t.Fatalf("expected ratio 0.0, got %v", got)
	}
	if got := contextopt.OverlapRatio("", "anything"); got != 0.0 {
		t.Fatalf("expected ratio 0.0 for empty text, got %v", got)
	}
}

func TestEstimatedCounter(t *testing.T) {
	counter := contextopt.NewEstimatedCounter()
	if counter.Count("") != 0 {
		t.Fatal("expected zero tokens for empty text")
	}
	if counter.Count("twelve character text sample") == 0 {
		t.Fatal("expected non-zero tokens for real text")
	}
}
