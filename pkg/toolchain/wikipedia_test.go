package toolchain_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/easyops/studybuddy-go/pkg/toolchain"
)

func summaryServer(t *testing.T, pageType, title, extract string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":%q,"title":%q,"extract":%q}`, pageType, title, extract)
	}))
}

func TestWikipediaClient_SummaryKeepsDecimals(t *testing.T) {
	// Periods inside numbers must not end a sentence, so "38.4" and "2.02"
	// survive the two-sentence trim intact.
	server := summaryServer(t, "standard", "Monaco",
		"Monaco has a population of 38.4 thousand residents according to recent census figures. "+
			"It covers about 2.02 square kilometres along the French Riviera coastline. "+
			"Tourism drives much of its economy.")
	defer server.Close()

	client := toolchain.NewWikipediaClient(toolchain.WithWikipediaBaseURL(server.URL))

	result, err := client.Summary(context.Background(), "Monaco")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	want := "Monaco has a population of 38.4 thousand residents according to recent census figures. " +
		"It covers about 2.02 square kilometres along the French Riviera coastline."
	if result.Text != want {
		t.Fatalf("unexpected summary text %q", result.Text)
	}
	if !result.Valid {
		t.Fatal("expected usable summary")
	}
	if result.Source != toolchain.SourceWikipedia {
		t.Fatalf("expected Wikipedia source, got %s", result.Source)
	}
}

func TestWikipediaClient_SummaryDisambiguation(t *testing.T) {
	server := summaryServer(t, "disambiguation", "Mercury", "Mercury may refer to:")
	defer server.Close()

	client := toolchain.NewWikipediaClient(toolchain.WithWikipediaBaseURL(server.URL))

	result, err := client.Summary(context.Background(), "Mercury")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}

	if result.Valid {
		t.Fatal("disambiguation pages are not usable answers")
	}
	if result.Text != `Multiple options found for "Mercury".` {
		t.Fatalf("unexpected text %q", result.Text)
	}
}
