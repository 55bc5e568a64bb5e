package query

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newsflow/internal/ai"
	"newsflow/internal/prompt"
	"newsflow/internal/retry"
)

type fakeGenerator struct {
	responses map[string]string // substring of prompt -> response text
	failures  int               // fail this many calls before succeeding
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, renderedPrompt string) (*ai.Result, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream unavailable")
	}
	for needle, text := range f.responses {
		if strings.Contains(renderedPrompt, needle) {
			return &ai.Result{Text: text}, nil
		}
	}
	return &ai.Result{Text: "site:news " + renderedPrompt}, nil
}

func testStore(t *testing.T) *prompt.Store {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	content := `{"Optimize_Queries_For_Browser_Search": "Refine this query: {{query}}"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	store, err := prompt.LoadStore(path)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 2, Delay: time.Millisecond, QuotaCooldown: time.Millisecond}
}

func TestOptimizeBatches(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]string{`"go"`: "golang news today"}}
	opt := NewOptimizer(gen, testStore(t), prompt.NewAuditLog(""), fastRetry())

	got := opt.OptimizeBatches(context.Background(), []string{`("go")`})

	if len(got) != 1 || got[0] != "golang news today" {
		t.Fatalf("got %v", got)
	}
}

func TestOptimizeBatchesSkipsFailedBatch(t *testing.T) {
	// Both retry attempts fail for every call, so each batch is skipped.
	gen := &fakeGenerator{failures: 1 << 30}
	opt := NewOptimizer(gen, testStore(t), prompt.NewAuditLog(""), fastRetry())

	got := opt.OptimizeBatches(context.Background(), []string{`("a")`, `("b")`})

	if len(got) != 0 {
		t.Fatalf("expected no optimized queries, got %v", got)
	}
	if gen.calls != 4 {
		t.Errorf("expected 2 attempts per batch (4 calls), got %d", gen.calls)
	}
}

func TestOptimizeBatchesRecoversWithinRetryBudget(t *testing.T) {
	gen := &fakeGenerator{failures: 1, responses: map[string]string{"": "recovered query"}}
	opt := NewOptimizer(gen, testStore(t), prompt.NewAuditLog(""), fastRetry())

	got := opt.OptimizeBatches(context.Background(), []string{`("a")`})

	if len(got) != 1 || got[0] != "recovered query" {
		t.Fatalf("got %v", got)
	}
	if gen.calls != 2 {
		t.Errorf("expected 2 calls, got %d", gen.calls)
	}
}
