package reasoning_test

import (
	"context"
	"strings"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/core/config"
	"github.com/easyops/studybuddy-go/pkg/reasoning"
)

func newScorer() *reasoning.Scorer {
	return reasoning.NewScorer(nil, config.DefaultScorerConfig(), nil)
}

func TestScore_Bounds(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()

	inputs := []struct {
		answer, query, convContext string
	}{
		{"", "", ""},
		{"short", "query", ""},
		{strings.Repeat("word ", 500), "query", "context"},
		{"a thorough and well formed answer about the topic", "topic question", "earlier context"},
	}

	for _, in := range inputs {
		score := scorer.Score(ctx, in.answer, in.query, in.convContext)
		if score < 0 || score > 1 {
			t.Fatalf("score %v out of [0, 1] for answer %q", score, in.answer)
		}
	}
}

func TestScore_OverlapRewarded(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()
	query := "how does binary search work"

	onTopic := scorer.Score(ctx, "binary search works by halving the interval", query, "")
	offTopic := scorer.Score(ctx, "pasta tastes good with tomato sauce", query, "")

	if onTopic <= offTopic {
		t.Fatalf("expected on-topic answer to score higher: %v vs %v", onTopic, offTopic)
	}
}

func TestScore_HedgingPenalized(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()
	query := "capital of France"

	confident := scorer.Score(ctx, "The capital of France is Paris without question.", query, "")
	hedged := scorer.Score(ctx, "I am not sure but the capital of France is Paris.", query, "")

	if confident <= hedged {
		t.Fatalf("expected hedged answer to score lower: %v vs %v", confident, hedged)
	}
}

func TestScore_ErrorTextPenalized(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()

	clean := scorer.Score(ctx, "the result is forty two", "some question", "")
	withError := scorer.Score(ctx, "the result is an error state", "some question", "")

	if clean <= withError {
		t.Fatalf("expected error text to score lower: %v vs %v", clean, withError)
	}
}

func TestScore_IdealLengthRewarded(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()
	query := "unrelated"

	ideal := scorer.Score(ctx, strings.Repeat("steady filler phrase ", 25), query, "")
	tiny := scorer.Score(ctx, "yes", query, "")

	if ideal <= tiny {
		t.Fatalf("expected mid-length answer to score higher: %v vs %v", ideal, tiny)
	}
}

func TestScore_Deterministic(t *testing.T) {
	scorer := newScorer()
	ctx := context.Background()

	first := scorer.Score(ctx, "a stable answer about gravity", "gravity question", "context")
	second := scorer.Score(ctx, "a stable answer about gravity", "gravity question", "context")

	if first != second {
		t.Fatalf("expected deterministic score, got %v then %v", first, second)
	}
}
