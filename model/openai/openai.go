// Package openai provides a model adapter for the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is used when no model id is configured.
const DefaultModel = "gpt-4o-mini"

// Options configures the OpenAI model adapter (model id, temperature,
// max tokens). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Model wraps the OpenAI Chat Completions API behind a text-in/text-out surface.
type Model struct {
	client *openai.Client
	opts   Options
}

// New creates an OpenAI model using the official client.
func New(apiKey string, optFns ...func(o *Options)) *Model {
	var clientOpts []option.RequestOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	}

	client := openai.NewClient(clientOpts...)

	return NewFromClient(&client, optFns...)
}

// NewFromClient creates an OpenAI model from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
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
// first choice's message content.
func (m *Model) GetResponse(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:               openai.ChatModel(m.opts.Model),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(int64(m.opts.MaxTokens)),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
