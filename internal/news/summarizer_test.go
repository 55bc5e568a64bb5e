package news

import (
	"context"
	"errors"
	"testing"

	"newsflow/internal/prompt"
)

func translatedItems() []TranslatedItem {
	return []TranslatedItem{
		{Title: "Story one", Link: "https://n.example/1", DisplayLink: "n.example", Snippet: "snippet one"},
		{Title: "Story two", Link: "https://n.example/2", DisplayLink: "n.example", Snippet: "snippet two"},
	}
}

func TestFilterAndSummarizeKeepsGenuine(t *testing.T) {
	gen := &stubGenerator{text: `{"articles":[
		{"title":"Story one","link":"https://n.example/1","genuine":true,"summary":"short recap"},
		{"title":"Story two","link":"https://n.example/2","genuine":false,"summary":"fabricated"}
	]}`}
	s := NewSummarizer(gen, stageStore(t), prompt.NewAuditLog(""))

	got := s.FilterAndSummarize(context.Background(), translatedItems())

	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	if got[0].Link != "https://n.example/1" || got[0].Summary != "short recap" {
		t.Errorf("unexpected article: %+v", got[0])
	}
}

func TestFilterAndSummarizeSummaryFallsBackToSnippet(t *testing.T) {
	gen := &stubGenerator{text: `{"articles":[
		{"title":"Story one","link":"https://n.example/1","genuine":true}
	]}`}
	s := NewSummarizer(gen, stageStore(t), prompt.NewAuditLog(""))

	got := s.FilterAndSummarize(context.Background(), translatedItems())

	if len(got) != 1 {
		t.Fatalf("got %d articles, want 1", len(got))
	}
	if got[0].Summary != "snippet one" {
		t.Errorf("summary should fall back to the snippet, got %q", got[0].Summary)
	}
}

func TestFilterAndSummarizeFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"call error", &stubGenerator{err: errors.New("boom")}},
		{"not JSON", &stubGenerator{text: "no articles today"}},
		{"wrong shape", &stubGenerator{text: `{"verdicts":[true,false]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSummarizer(tt.gen, stageStore(t), prompt.NewAuditLog(""))
			if got := s.FilterAndSummarize(context.Background(), translatedItems()); len(got) != 0 {
				t.Errorf("expected empty result, got %v", got)
			}
		})
	}
}

func TestFilterAndSummarizeEmptyInputSkipsCall(t *testing.T) {
	s := NewSummarizer(&stubGenerator{err: errors.New("must not be called")}, stageStore(t), prompt.NewAuditLog(""))
	if got := s.FilterAndSummarize(context.Background(), nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
