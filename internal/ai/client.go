// Package ai holds the text-generation clients the pipeline stages call.
// Every provider exposes the same one-shot Generate contract; callers never
// see provider-specific request or response types.
package ai

import "context"

// Result is the normalized output of one generation call.
type Result struct {
	Text         string
	ModelVersion string
	ResponseID   string
	TokensUsed   int
}

// Client is a one-shot text-generation call. Quota exhaustion must surface
// in the returned error text (RESOURCE_EXHAUSTED or a 429) so the retry
// layer can apply its long cooldown.
type Client interface {
	Generate(ctx context.Context, prompt string) (*Result, error)
}
