package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name           string
		template       string
		params         map[string]any
		want           string
		wantUnresolved []string
	}{
		{
			name:     "string substitution",
			template: "Search for {{query}} today",
			params:   map[string]any{"query": "go releases"},
			want:     "Search for go releases today",
		},
		{
			name:     "non-string values are JSON encoded",
			template: "News: {{news}}",
			params:   map[string]any{"news": []string{"a", "b"}},
			want:     `News: ["a","b"]`,
		},
		{
			name:     "repeated placeholder",
			template: "{{kw}} and {{kw}}",
			params:   map[string]any{"kw": "x"},
			want:     "x and x",
		},
		{
			name:           "unmatched placeholder is stripped",
			template:       "query={{query}} extra={{missing}}",
			params:         map[string]any{"query": "q"},
			want:           "query=q extra=",
			wantUnresolved: []string{"missing"},
		},
		{
			name:           "no params strips everything",
			template:       "{{a}}{{b}}",
			params:         nil,
			want:           "",
			wantUnresolved: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unresolved := Render(tt.template, tt.params)
			if got != tt.want {
				t.Errorf("rendered %q, want %q", got, tt.want)
			}
			if len(unresolved) != len(tt.wantUnresolved) {
				t.Fatalf("unresolved %v, want %v", unresolved, tt.wantUnresolved)
			}
			for i, name := range tt.wantUnresolved {
				if unresolved[i] != name {
					t.Errorf("unresolved[%d] = %q, want %q", i, unresolved[i], name)
				}
			}
		})
	}
}

func TestLoadStoreAndLookup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.json")
	content := `{"Optimize_Queries_For_Browser_Search": "optimize {{query}}"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := LoadStore(path)
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}

	tpl, err := store.Lookup(ModuleOptimizeQueries)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if tpl != "optimize {{query}}" {
		t.Errorf("got template %q", tpl)
	}

	if _, err := store.Lookup("Unknown_Module"); err == nil {
		t.Error("expected error for unknown module")
	}
}

func TestAuditLogRecord(t *testing.T) {
	dir := t.TempDir()
	audit := NewAuditLog(dir)

	audit.Record(ModuleTranslateNews, "rendered prompt body")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit file, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Name(), ModuleTranslateNews) {
		t.Errorf("audit file name %q should contain the module name", entries[0].Name())
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "rendered prompt body" {
		t.Errorf("audit file content %q", string(data))
	}
}
