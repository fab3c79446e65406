// Package connector implements action-addressed integrations with external
// services (GitHub, Slack, Notion). Unlike tools, a connector exposes a set
// of named actions, each with its own parameter schema, behind a single
// authenticated client.
//
// Error shape convention: user-correctable problems (unknown action, missing
// parameters, a service-side rejection) come back as result strings starting
// with "Error:" so the agent loop can show them to the model, while
// transport-level failures are returned as Go errors.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Connector is an action-addressed capability available to agents.
type Connector interface {
	// Name identifies the connector within an agent.
	Name() string

	// ActionSchema maps each action name to its parameter descriptions
	// (parameter name -> type/usage hint) for prompt rendering.
	ActionSchema() map[string]map[string]string

	// Run executes one action. See the package comment for the error shape
	// convention.
	Run(ctx context.Context, action string, input map[string]any) (string, error)

	// Verify performs one cheap authenticated call to check the token.
	Verify(ctx context.Context) error
}

// Options configures a connector's HTTP behavior, mainly for tests.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func (o *Options) applyDefaults(baseURL string) {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
}

// TokenFromEnv resolves a connector token from the environment. Patterns are
// tried in order against the upper-cased connector name; the first non-empty
// value wins, and "" is returned when nothing is set:
//
//	TVARA_AUTH_<NAME>
//	COMPOSIO_<NAME>_TOKEN
//	<NAME>_TOKEN
func TokenFromEnv(name string) string {
	upper := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(name))
	for _, key := range []string{
		"TVARA_AUTH_" + upper,
		"COMPOSIO_" + upper + "_TOKEN",
		upper + "_TOKEN",
	} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// unknownAction is the shared response for an unrecognized action name.
func unknownAction(action string) string {
	return fmt.Sprintf("Error: Unknown action '%s'", action)
}

// stringParam extracts a non-empty string parameter, reporting presence.
func stringParam(input map[string]any, key string) (string, bool) {
	v, ok := input[key].(string)
	return v, ok && v != ""
}

// intParam extracts an integer parameter, tolerating JSON's float64 decoding.
func intParam(input map[string]any, key string) (int, bool) {
	switch v := input[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// doJSON performs an HTTP request with a JSON body (nil for none) and returns
// the response status and raw body. The Authorization header and any extras
// are set by the caller via headers.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp.StatusCode, raw, nil
}

// compactJSON re-encodes a raw JSON body without insignificant whitespace so
// connector results stay single-line in conversation history. Invalid JSON
// passes through trimmed.
func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}
