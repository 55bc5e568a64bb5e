// Package news holds the pipeline item types and the stages that refine
// them: cleaning, translation, and filter-summarization. An item keeps the
// same link identity through every refinement.
package news

// Candidate is a raw web-search result, one per returned item. The link is
// the natural identity used for all later deduplication.
type Candidate struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
}

// CleanItem is a Candidate that survived the relevance filter and dedup.
type CleanItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
}

// TranslatedItem is a CleanItem with title and snippet replaced by
// translated text.
type TranslatedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
}

// FinalArticle is a TranslatedItem that the filter stage accepted as
// genuine, enriched with a short summary.
type FinalArticle struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	DisplayLink string `json:"displayLink"`
	Snippet     string `json:"snippet"`
	Summary     string `json:"summary"`
}
