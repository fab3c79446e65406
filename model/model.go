package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/tvarahq/tvara-go/model/anthropic"
	"github.com/tvarahq/tvara-go/model/gemini"
	"github.com/tvarahq/tvara-go/model/openai"
)

// Default is the model used when an agent does not name one explicitly.
const Default = "gemini-2.5-flash"

// Model is the minimal interface agents and workflows use to drive generation.
// Implementations are opaque text-in/text-out adapters; any conversation
// framing lives in the rendered prompt, not in the transport.
type Model interface {
	// Name returns the provider-side model identifier.
	Name() string

	// GetResponse sends the prompt and returns the model's textual reply.
	// A non-nil error aborts the caller's current run.
	GetResponse(ctx context.Context, prompt string) (string, error)
}

// Options configures models built through the New factory. Provider-specific
// knobs beyond these belong on the provider package's own Options.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// New builds a Model for the given model name, routing to the matching
// provider adapter by name: "gemini" models go to Google, "claude" models to
// Anthropic, and "gpt" (or "o1"/"o3"/"o4" series) models to OpenAI.
func New(name, apiKey string, optFns ...func(o *Options)) (Model, error) {
	opts := Options{
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "gemini"):
		m, err := gemini.New(apiKey, func(o *gemini.Options) {
			o.Model = name
			o.Temperature = opts.Temperature
			o.MaxTokens = opts.MaxTokens
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini model: %w", err)
		}
		return m, nil
	case strings.Contains(lower, "claude"):
		return anthropic.New(apiKey, func(o *anthropic.Options) {
			o.Model = name
			o.Temperature = opts.Temperature
			o.MaxTokens = opts.MaxTokens
		}), nil
	case strings.Contains(lower, "gpt"),
		strings.HasPrefix(lower, "o1"),
		strings.HasPrefix(lower, "o3"),
		strings.HasPrefix(lower, "o4"):
		return openai.New(apiKey, func(o *openai.Options) {
			o.Model = name
			o.Temperature = opts.Temperature
			o.MaxTokens = opts.MaxTokens
		}), nil
	default:
		return nil, fmt.Errorf("unsupported model %q: expected a gemini, claude, or gpt family model", name)
	}
}
