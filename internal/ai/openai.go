package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient is the fallback provider, used when Gemini is unavailable or
// when only an OpenAI key is configured.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (*Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("empty response from OpenAI")
	}

	return &Result{
		Text:         text,
		ModelVersion: resp.Model,
		ResponseID:   resp.ID,
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}

// Fallback chains providers: each Generate tries them in order and returns
// the first success. A quota error on the primary still falls through, so a
// run can finish on the secondary while the primary cools down.
type Fallback struct {
	providers []Client
}

func NewFallback(providers ...Client) *Fallback {
	return &Fallback{providers: providers}
}

func (f *Fallback) Generate(ctx context.Context, prompt string) (*Result, error) {
	var lastErr error
	for _, p := range f.providers {
		result, err := p.Generate(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no generation providers configured")
	}
	return nil, lastErr
}
