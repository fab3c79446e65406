package connector

import (
	"context"
	"fmt"
	"net/http"
)

const defaultGitHubBaseURL = "https://api.github.com"

// GitHub talks to the GitHub REST v3 API with a bearer token.
type GitHub struct {
	token string
	opts  Options
}

// NewGitHub builds a GitHub connector.
func NewGitHub(token string, optFns ...func(o *Options)) *GitHub {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.applyDefaults(defaultGitHubBaseURL)

	return &GitHub{token: token, opts: opts}
}

// Name implements Connector.
func (g *GitHub) Name() string { return "github" }

// ActionSchema implements Connector.
func (g *GitHub) ActionSchema() map[string]map[string]string {
	return map[string]map[string]string{
		"list_repos": {},
		"list_issues": {
			"owner": "string - repository owner",
			"repo":  "string - repository name",
		},
		"create_issue": {
			"owner": "string - repository owner",
			"repo":  "string - repository name",
			"title": "string - issue title",
			"body":  "string - issue body (optional)",
		},
		"get_repo": {
			"owner": "string - repository owner",
			"repo":  "string - repository name",
		},
	}
}

// Run implements Connector.
func (g *GitHub) Run(ctx context.Context, action string, input map[string]any) (string, error) {
	switch action {
	case "list_repos":
		return g.get(ctx, "/user/repos")

	case "list_issues":
		owner, okOwner := stringParam(input, "owner")
		repo, okRepo := stringParam(input, "repo")
		if !okOwner || !okRepo {
			return "Error: 'owner' and 'repo' are required for 'list_issues' action.", nil
		}
		return g.get(ctx, fmt.Sprintf("/repos/%s/%s/issues", owner, repo))

	case "create_issue":
		owner, okOwner := stringParam(input, "owner")
		repo, okRepo := stringParam(input, "repo")
		title, okTitle := stringParam(input, "title")
		if !okOwner || !okRepo || !okTitle {
			return "Error: 'owner', 'repo', and 'title' are required for 'create_issue' action.", nil
		}
		body, _ := stringParam(input, "body")
		payload := map[string]any{"title": title}
		if body != "" {
			payload["body"] = body
		}
		return g.post(ctx, fmt.Sprintf("/repos/%s/%s/issues", owner, repo), payload)

	case "get_repo":
		owner, okOwner := stringParam(input, "owner")
		repo, okRepo := stringParam(input, "repo")
		if !okOwner || !okRepo {
			return "Error: 'owner' and 'repo' are required for 'get_repo' action.", nil
		}
		return g.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo))

	default:
		return unknownAction(action), nil
	}
}

// Verify implements Connector by fetching the authenticated user.
func (g *GitHub) Verify(ctx context.Context) error {
	status, body, err := doJSON(ctx, g.opts.HTTPClient, http.MethodGet, g.opts.BaseURL+"/user", nil, g.headers())
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("github token verification failed: status %d: %s", status, compactJSON(body))
	}
	return nil
}

func (g *GitHub) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + g.token,
		"Accept":        "application/vnd.github+json",
	}
}

func (g *GitHub) get(ctx context.Context, path string) (string, error) {
	return g.request(ctx, http.MethodGet, path, nil)
}

func (g *GitHub) post(ctx context.Context, path string, payload any) (string, error) {
	return g.request(ctx, http.MethodPost, path, payload)
}

func (g *GitHub) request(ctx context.Context, method, path string, payload any) (string, error) {
	status, body, err := doJSON(ctx, g.opts.HTTPClient, method, g.opts.BaseURL+path, payload, g.headers())
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return fmt.Sprintf("Error: GitHub API returned status %d: %s", status, compactJSON(body)), nil
	}
	return compactJSON(body), nil
}
