// Package gemini provides a model adapter for the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model id is configured.
const DefaultModel = "gemini-2.5-flash"

// Options configures the Gemini model adapter (model id, temperature,
// max tokens). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Model wraps the Gemini GenerateContent API behind a text-in/text-out surface.
type Model struct {
	client *genai.Client
	opts   Options
}

// New creates a Gemini model using the official genai client. Client
// construction uses context.Background; constructors should not require a
// caller context.
func New(apiKey string, optFns ...func(o *Options)) (*Model, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return NewFromClient(client, optFns...), nil
}

// NewFromClient creates a Gemini model from an existing client.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       DefaultModel,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	return &Model{
		client: client,
		opts:   opts,
	}
}

// Name returns the configured model id.
func (m *Model) Name() string { return m.opts.Model }

// GetResponse sends the prompt as a single user content and returns the
// concatenated text parts of the first candidate.
func (m *Model) GetResponse(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(m.opts.Temperature)),
		MaxOutputTokens: int32(m.opts.MaxTokens),
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" && !part.Thought {
			sb.WriteString(part.Text)
		}
	}

	return sb.String(), nil
}
