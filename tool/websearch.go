package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// WebSearchOptions configures the web search tool.
type WebSearchOptions struct {
	// BaseURL overrides the Tavily API endpoint, mainly for tests.
	BaseURL string

	// MaxResults bounds the number of result snippets returned.
	MaxResults int

	// HTTPClient overrides the transport used for API calls.
	HTTPClient *http.Client
}

type webSearchTool struct {
	apiKey string
	opts   WebSearchOptions
}

type webSearchInput struct {
	Query string `json:"query" description:"Search query"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Answer  string         `json:"answer"`
	Results []tavilyResult `json:"results"`
}

// NewWebSearch returns a tool that performs a web search through the Tavily
// API and formats the answer plus the top result snippets as plain text.
func NewWebSearch(apiKey string, optFns ...func(o *WebSearchOptions)) Tool {
	opts := WebSearchOptions{
		BaseURL:    defaultTavilyBaseURL,
		MaxResults: 5,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ws := &webSearchTool{apiKey: apiKey, opts: opts}

	return NewFunc("web_search", "Performs a web search and returns the answer with supporting results.",
		func(ctx context.Context, in webSearchInput) (string, error) {
			return ws.search(ctx, in.Query)
		})
}

func (w *webSearchTool) search(ctx context.Context, query string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"api_key":        w.apiKey,
		"query":          query,
		"include_answer": true,
		"max_results":    w.opts.MaxResults,
	})
	if err != nil {
		return "", fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.opts.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.opts.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	var sb strings.Builder
	if parsed.Answer != "" {
		sb.WriteString("Answer: ")
		sb.WriteString(parsed.Answer)
		sb.WriteString("\n\n")
	}

	for i, r := range parsed.Results {
		if i >= w.opts.MaxResults {
			break
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n   %s\n", i+1, r.Title, r.URL, r.Content)
	}

	if sb.Len() == 0 {
		return "No results found.", nil
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
