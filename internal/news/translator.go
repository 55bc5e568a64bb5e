package news

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"newsflow/internal/ai"
	"newsflow/internal/metrics"
	"newsflow/internal/prompt"
)

// Translator sends a topic's clean items through one generation call that
// returns translated title/snippet pairs keyed by link.
type Translator struct {
	client  ai.Client
	prompts *prompt.Store
	audit   *prompt.AuditLog
}

func NewTranslator(client ai.Client, prompts *prompt.Store, audit *prompt.AuditLog) *Translator {
	return &Translator{client: client, prompts: prompts, audit: audit}
}

// Translate converts clean items into translated items. Any call failure,
// parse failure, or schema mismatch yields an empty list for the topic;
// retries, when wanted, wrap the whole call at the workflow layer.
func (t *Translator) Translate(ctx context.Context, items []CleanItem) []TranslatedItem {
	if len(items) == 0 {
		return nil
	}

	tpl, err := t.prompts.Lookup(prompt.ModuleTranslateNews)
	if err != nil {
		slog.Error("cannot translate news", "error", err)
		return nil
	}

	rendered, unresolved := prompt.Render(tpl, map[string]any{"news": items})
	if len(unresolved) > 0 {
		slog.Warn("prompt has unresolved placeholders", "module", prompt.ModuleTranslateNews, "placeholders", unresolved)
	}
	t.audit.Record(prompt.ModuleTranslateNews, rendered)

	result, err := t.client.Generate(ctx, rendered)
	if err != nil {
		metrics.Global.IncrementGenerationFailures()
		slog.Error("translation call failed", "error", err)
		return nil
	}

	parsed := normalizeNewsResponse(result.Text)
	if parsed == nil {
		slog.Error("translation response has no recognizable shape", "response", truncate(result.Text, 300))
		return nil
	}

	// Re-key by the original link so the identity chain survives whatever
	// order the model answered in.
	byLink := make(map[string]CleanItem, len(items))
	for _, item := range items {
		byLink[item.Link] = item
	}

	var translated []TranslatedItem
	for _, entry := range parsed {
		original, ok := byLink[entry.Link]
		if !ok {
			slog.Warn("translated item has unknown link, dropping", "link", entry.Link)
			continue
		}
		title := entry.Title
		if title == "" {
			title = original.Title
		}
		snippet := entry.Snippet
		if snippet == "" {
			snippet = original.Snippet
		}
		translated = append(translated, TranslatedItem{
			Title:       title,
			Link:        original.Link,
			DisplayLink: original.DisplayLink,
			Snippet:     snippet,
		})
	}
	return translated
}

// responseItem is the loose per-item shape both generation stages return.
type responseItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary"`
	Genuine *bool  `json:"genuine"`
}

// newsWrapper covers the wrapper shapes seen in the wild: a "list" of
// objects each holding a "news" array, a direct "news" array, or an
// "articles" array from the summarization module.
type newsWrapper struct {
	List []struct {
		News []responseItem `json:"news"`
	} `json:"list"`
	News     []responseItem `json:"news"`
	Articles []responseItem `json:"articles"`
}

// normalizeNewsResponse pattern-matches the accepted response shapes into
// one flat item list, failing closed (nil) on anything else.
func normalizeNewsResponse(text string) []responseItem {
	cleaned := stripCodeFence(text)

	var bare []responseItem
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		return bare
	}

	var wrapper newsWrapper
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
		return nil
	}
	if len(wrapper.List) > 0 && len(wrapper.List[0].News) > 0 {
		return wrapper.List[0].News
	}
	if len(wrapper.News) > 0 {
		return wrapper.News
	}
	if len(wrapper.Articles) > 0 {
		return wrapper.Articles
	}
	return nil
}

// stripCodeFence removes the markdown fences models wrap JSON in.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
