package connector

import (
	"context"
	"fmt"
	"net/http"
)

const (
	defaultNotionBaseURL = "https://api.notion.com/v1"
	notionVersion        = "2022-06-28"
)

// Notion talks to the Notion REST API with a bearer token and the pinned
// Notion-Version header.
type Notion struct {
	token string
	opts  Options
}

// NewNotion builds a Notion connector.
func NewNotion(token string, optFns ...func(o *Options)) *Notion {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.applyDefaults(defaultNotionBaseURL)

	return &Notion{token: token, opts: opts}
}

// Name implements Connector.
func (n *Notion) Name() string { return "notion" }

// ActionSchema implements Connector.
func (n *Notion) ActionSchema() map[string]map[string]string {
	return map[string]map[string]string{
		"search": {
			"query": "string - search keyword",
		},
		"create_page": {
			"parent_page_id": "string - ID of the parent page",
			"title":          "string - page title",
			"content":        "string - initial paragraph content (optional)",
		},
		"get_page": {
			"page_id": "string - ID of the page",
		},
	}
}

// Run implements Connector.
func (n *Notion) Run(ctx context.Context, action string, input map[string]any) (string, error) {
	switch action {
	case "search":
		query, ok := stringParam(input, "query")
		if !ok {
			return "Error: 'query' is required for 'search' action.", nil
		}
		return n.request(ctx, http.MethodPost, "/search", map[string]any{"query": query})

	case "create_page":
		parentID, okParent := stringParam(input, "parent_page_id")
		title, okTitle := stringParam(input, "title")
		if !okParent || !okTitle {
			return "Error: 'parent_page_id' and 'title' are required for 'create_page' action.", nil
		}

		payload := map[string]any{
			"parent": map[string]any{"page_id": parentID},
			"properties": map[string]any{
				"title": map[string]any{
					"title": []map[string]any{
						{"text": map[string]any{"content": title}},
					},
				},
			},
		}
		if content, ok := stringParam(input, "content"); ok {
			payload["children"] = []map[string]any{
				{
					"object": "block",
					"type":   "paragraph",
					"paragraph": map[string]any{
						"rich_text": []map[string]any{
							{"text": map[string]any{"content": content}},
						},
					},
				},
			}
		}
		return n.request(ctx, http.MethodPost, "/pages", payload)

	case "get_page":
		pageID, ok := stringParam(input, "page_id")
		if !ok {
			return "Error: 'page_id' is required for 'get_page' action.", nil
		}
		return n.request(ctx, http.MethodGet, "/pages/"+pageID, nil)

	default:
		return unknownAction(action), nil
	}
}

// Verify implements Connector by fetching the bot user.
func (n *Notion) Verify(ctx context.Context) error {
	status, body, err := doJSON(ctx, n.opts.HTTPClient, http.MethodGet, n.opts.BaseURL+"/users/me", nil, n.headers())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("notion token verification failed: status %d: %s", status, compactJSON(body))
	}
	return nil
}

func (n *Notion) headers() map[string]string {
	return map[string]string{
		"Authorization":  "Bearer " + n.token,
		"Notion-Version": notionVersion,
	}
}

func (n *Notion) request(ctx context.Context, method, path string, payload any) (string, error) {
	status, body, err := doJSON(ctx, n.opts.HTTPClient, method, n.opts.BaseURL+path, payload, n.headers())
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return fmt.Sprintf("Error: Notion API returned status %d: %s", status, compactJSON(body)), nil
	}
	return compactJSON(body), nil
}
