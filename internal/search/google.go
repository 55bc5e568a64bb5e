// Package search runs optimized queries against the Google Custom Search
// JSON API and flattens the results into candidate records.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"newsflow/internal/news"
)

// Searcher executes one query and returns raw candidates. A failed query
// yields an empty list, never an error that stops the topic.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) []news.Candidate
}

// GoogleSearcher talks to the Custom Search JSON API.
type GoogleSearcher struct {
	service  *customsearch.Service
	engineID string
}

func NewGoogleSearcher(ctx context.Context, apiKey, engineID string) (*GoogleSearcher, error) {
	service, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	return &GoogleSearcher{service: service, engineID: engineID}, nil
}

func (g *GoogleSearcher) Search(ctx context.Context, query string, maxResults int) []news.Candidate {
	if maxResults <= 0 {
		maxResults = 10
	}

	resp, err := g.service.Cse.List().
		Cx(g.engineID).
		Q(query).
		Num(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("search API error", "query", query, "error", err)
		return nil
	}

	if len(resp.Items) == 0 {
		slog.Warn("no items found for query", "query", query)
		return nil
	}

	candidates := make([]news.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		candidates = append(candidates, news.Candidate{
			Title:       item.Title,
			Link:        item.Link,
			DisplayLink: item.DisplayLink,
			Snippet:     item.Snippet,
		})
	}
	return candidates
}

// RunMultiple runs queries sequentially and concatenates the results.
// Cross-query dedup is deliberately left to the cleaner.
func RunMultiple(ctx context.Context, s Searcher, queries []string, maxResultsPerQuery int) []news.Candidate {
	var all []news.Candidate
	for _, query := range queries {
		results := s.Search(ctx, query, maxResultsPerQuery)
		all = append(all, results...)
		slog.Debug("query done", "query", query, "results", len(results))
	}
	return all
}
