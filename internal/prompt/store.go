// Package prompt loads the per-module prompt templates and renders them
// with named parameters before a generation call.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Module names of the prompt templates, as keyed in prompts.json.
const (
	ModuleOptimizeQueries = "Optimize_Queries_For_Browser_Search"
	ModuleTranslateNews   = "Translate_News"
	ModuleFilterSummarize = "Filter_Summarize_News"
)

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Store holds prompt templates keyed by module name.
type Store struct {
	templates map[string]string
}

// LoadStore reads the prompts file, a flat JSON object of
// module name -> template text.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return &Store{templates: templates}, nil
}

// Lookup returns the template for a module.
func (s *Store) Lookup(module string) (string, error) {
	tpl, ok := s.templates[module]
	if !ok {
		return "", fmt.Errorf("no prompt template for module %q", module)
	}
	return tpl, nil
}

// Render substitutes {{name}} placeholders with the given parameters.
// Non-string values are JSON-encoded. Placeholders with no matching
// parameter are stripped from the output and their names returned, so the
// caller can log them instead of sending literal braces to the model.
func Render(template string, params map[string]any) (string, []string) {
	rendered := template
	for key, value := range params {
		encoded, ok := value.(string)
		if !ok {
			data, err := json.Marshal(value)
			if err != nil {
				continue
			}
			encoded = string(data)
		}
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", encoded)
	}

	var unresolved []string
	rendered = placeholderPattern.ReplaceAllStringFunc(rendered, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		unresolved = append(unresolved, name)
		return ""
	})

	return rendered, unresolved
}
