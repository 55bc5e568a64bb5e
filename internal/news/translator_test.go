package news

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"newsflow/internal/ai"
	"newsflow/internal/prompt"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) Generate(context.Context, string) (*ai.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Result{Text: s.text}, nil
}

func stageStore(t *testing.T) *prompt.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	content := `{
		"Translate_News": "Translate: {{news}}",
		"Filter_Summarize_News": "Verify and summarize: {{news}}"
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := prompt.LoadStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func cleanItems() []CleanItem {
	return []CleanItem{
		{Title: "Original one", Link: "https://n.example/1", DisplayLink: "n.example", Snippet: "first snippet"},
		{Title: "Original two", Link: "https://n.example/2", DisplayLink: "n.example", Snippet: "second snippet"},
	}
}

func TestTranslateBareArrayShape(t *testing.T) {
	gen := &stubGenerator{text: `[
		{"title":"Oversat en","link":"https://n.example/1","snippet":"første"},
		{"title":"Oversat to","link":"https://n.example/2","snippet":"anden"}
	]`}
	tr := NewTranslator(gen, stageStore(t), prompt.NewAuditLog(""))

	got := tr.Translate(context.Background(), cleanItems())

	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Title != "Oversat en" || got[0].Snippet != "første" {
		t.Errorf("translation not applied: %+v", got[0])
	}
	if got[0].Link != "https://n.example/1" || got[0].DisplayLink != "n.example" {
		t.Errorf("identity fields must carry through: %+v", got[0])
	}
}

func TestTranslateWrapperShapeWithCodeFence(t *testing.T) {
	gen := &stubGenerator{text: "```json\n" + `{"list":[{"news":[
		{"title":"Oversat en","link":"https://n.example/1","snippet":"første"}
	]}]}` + "\n```"}
	tr := NewTranslator(gen, stageStore(t), prompt.NewAuditLog(""))

	got := tr.Translate(context.Background(), cleanItems())

	if len(got) != 1 {
		t.Fatalf("got %d items, want 1", len(got))
	}
	if got[0].Title != "Oversat en" {
		t.Errorf("got title %q", got[0].Title)
	}
}

func TestTranslateDirectNewsShape(t *testing.T) {
	gen := &stubGenerator{text: `{"news":[{"title":"T","link":"https://n.example/2","snippet":"S"}]}`}
	tr := NewTranslator(gen, stageStore(t), prompt.NewAuditLog(""))

	got := tr.Translate(context.Background(), cleanItems())

	if len(got) != 1 || got[0].Link != "https://n.example/2" {
		t.Fatalf("got %v", got)
	}
}

func TestTranslateFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{"call error", &stubGenerator{err: errors.New("boom")}},
		{"not JSON", &stubGenerator{text: "Sorry, I cannot help with that."}},
		{"wrong shape", &stubGenerator{text: `{"result":"ok"}`}},
		{"unknown links only", &stubGenerator{text: `[{"title":"x","link":"https://other.example/9","snippet":"y"}]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTranslator(tt.gen, stageStore(t), prompt.NewAuditLog(""))
			if got := tr.Translate(context.Background(), cleanItems()); len(got) != 0 {
				t.Errorf("expected empty result, got %v", got)
			}
		})
	}
}

func TestTranslateEmptyInputSkipsCall(t *testing.T) {
	tr := NewTranslator(&stubGenerator{err: errors.New("must not be called")}, stageStore(t), prompt.NewAuditLog(""))
	if got := tr.Translate(context.Background(), nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain unchanged", `[1]`, `[1]`},
		{"json fence", "```json\n[1]\n```", `[1]`},
		{"bare fence", "```\n[1]\n```", `[1]`},
		{"whitespace", "  [1]  ", `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
