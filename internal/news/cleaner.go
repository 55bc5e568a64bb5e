package news

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	quotedPattern   = regexp.MustCompile(`"([^"]+)"`)
	hoursAgoPattern = regexp.MustCompile(`(\d+)\s+hours?\s+ago`)
	daysAgoPattern  = regexp.MustCompile(`(\d+)\s+days?\s+ago`)
)

// Cleaner filters, deduplicates, and ranks raw search candidates. Now is
// injectable so ranking is deterministic under test.
type Cleaner struct {
	Now func() time.Time
}

func NewCleaner() *Cleaner {
	return &Cleaner{Now: time.Now}
}

// ExtractKeywords pulls every double-quoted substring out of one optimized
// query, lower-cased. Each query forms one keyword group for relevance
// scoring.
func ExtractKeywords(query string) []string {
	var keywords []string
	for _, match := range quotedPattern.FindAllStringSubmatch(query, -1) {
		kw := strings.ToLower(strings.TrimSpace(match[1]))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// Clean runs the three sub-steps over a topic's concatenated candidates:
// relevance filter against the quoted keywords of the optimized queries,
// first-seen dedup by link, and a recency-then-relevance sort. Any panic
// inside cleaning is recovered to an empty result; an empty input is a
// valid empty output, not an error.
func (c *Cleaner) Clean(candidates []Candidate, optimizedQueries []string) (items []CleanItem) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cleaning failed, returning no items", "panic", r)
			items = nil
		}
	}()

	if len(candidates) == 0 {
		return nil
	}

	groups := make([][]string, 0, len(optimizedQueries))
	for _, q := range optimizedQueries {
		if kws := ExtractKeywords(q); len(kws) > 0 {
			groups = append(groups, kws)
		}
	}

	now := c.Now()

	type ranked struct {
		item        CleanItem
		publishedAt time.Time
		score       int
	}

	seen := map[string]struct{}{}
	var kept []ranked

	for _, cand := range candidates {
		score := relevanceScore(cand, groups)
		if score == 0 {
			continue
		}

		if _, dup := seen[cand.Link]; dup {
			continue
		}
		seen[cand.Link] = struct{}{}

		kept = append(kept, ranked{
			item: CleanItem{
				Title:       cand.Title,
				Link:        cand.Link,
				DisplayLink: cand.DisplayLink,
				Snippet:     cand.Snippet,
			},
			publishedAt: inferPublishedAt(cand.Snippet, now),
			score:       score,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].publishedAt.Equal(kept[j].publishedAt) {
			return kept[i].publishedAt.After(kept[j].publishedAt)
		}
		return kept[i].score > kept[j].score
	})

	items = make([]CleanItem, 0, len(kept))
	for _, r := range kept {
		items = append(items, r.item)
	}
	return items
}

// relevanceScore counts the keyword groups with at least one keyword
// appearing in the candidate's title or snippet, case-insensitively.
// Zero means the candidate matches nothing and is dropped.
func relevanceScore(cand Candidate, groups [][]string) int {
	text := strings.ToLower(cand.Title + " " + cand.Snippet)

	score := 0
	for _, group := range groups {
		for _, kw := range group {
			if strings.Contains(text, kw) {
				score++
				break
			}
		}
	}
	return score
}

// inferPublishedAt parses the relative dates Google puts at the front of
// snippets ("5 hours ago", "2 days ago"). Anything else ranks as published
// right now, so undated items sort as most recent.
func inferPublishedAt(snippet string, now time.Time) time.Time {
	lower := strings.ToLower(snippet)

	if m := hoursAgoPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Hour)
		}
	}
	if m := daysAgoPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.AddDate(0, 0, -n)
		}
	}
	return now
}
