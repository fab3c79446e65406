// Package anthropic provides a model adapter for the Anthropic Claude API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model id is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Options configures the Anthropic model adapter (model id, temperature,
// max tokens). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Model wraps the Anthropic Messages API behind a text-in/text-out surface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// New creates an Anthropic model using the official client.
func New(apiKey string, optFns ...func(o *Options)) *Model {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an Anthropic model from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
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

// GetResponse sends the prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (m *Model) GetResponse(ctx context.Context, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model: anthropic.Model(m.opts.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		MaxTokens:   int64(m.opts.MaxTokens),
		Temperature: anthropic.Float(m.opts.Temperature),
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	return sb.String(), nil
}
