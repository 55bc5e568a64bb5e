package news

import (
	"context"
	"log/slog"

	"newsflow/internal/ai"
	"newsflow/internal/metrics"
	"newsflow/internal/prompt"
)

// Summarizer verifies translated items and attaches a short summary to
// each one the model accepts as genuine.
type Summarizer struct {
	client  ai.Client
	prompts *prompt.Store
	audit   *prompt.AuditLog
}

func NewSummarizer(client ai.Client, prompts *prompt.Store, audit *prompt.AuditLog) *Summarizer {
	return &Summarizer{client: client, prompts: prompts, audit: audit}
}

// FilterAndSummarize keeps only the items the model marks genuine. A
// missing summary falls back to the translated snippet so the digest never
// renders an empty card. Failure modes mirror the translator: any error
// yields an empty article list for the topic.
func (s *Summarizer) FilterAndSummarize(ctx context.Context, items []TranslatedItem) []FinalArticle {
	if len(items) == 0 {
		return nil
	}

	tpl, err := s.prompts.Lookup(prompt.ModuleFilterSummarize)
	if err != nil {
		slog.Error("cannot filter and summarize news", "error", err)
		return nil
	}

	rendered, unresolved := prompt.Render(tpl, map[string]any{"news": items})
	if len(unresolved) > 0 {
		slog.Warn("prompt has unresolved placeholders", "module", prompt.ModuleFilterSummarize, "placeholders", unresolved)
	}
	s.audit.Record(prompt.ModuleFilterSummarize, rendered)

	result, err := s.client.Generate(ctx, rendered)
	if err != nil {
		metrics.Global.IncrementGenerationFailures()
		slog.Error("summarization call failed", "error", err)
		return nil
	}

	parsed := normalizeNewsResponse(result.Text)
	if parsed == nil {
		slog.Error("summarization response has no recognizable shape", "response", truncate(result.Text, 300))
		return nil
	}

	byLink := make(map[string]TranslatedItem, len(items))
	for _, item := range items {
		byLink[item.Link] = item
	}

	var articles []FinalArticle
	for _, entry := range parsed {
		original, ok := byLink[entry.Link]
		if !ok {
			slog.Warn("summarized item has unknown link, dropping", "link", entry.Link)
			continue
		}
		if entry.Genuine != nil && !*entry.Genuine {
			continue
		}

		summary := entry.Summary
		if summary == "" {
			summary = original.Snippet
		}
		title := entry.Title
		if title == "" {
			title = original.Title
		}

		articles = append(articles, FinalArticle{
			Title:       title,
			Link:        original.Link,
			DisplayLink: original.DisplayLink,
			Snippet:     original.Snippet,
			Summary:     summary,
		})
	}
	return articles
}
