package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const defaultSlackBaseURL = "https://slack.com/api"

// Slack talks to the Slack Web API with a bearer token. Slack reports
// failures inside a 200 response as {"ok":false,"error":...}; those surface
// as "Error:" result strings.
type Slack struct {
	token string
	opts  Options
}

// NewSlack builds a Slack connector.
func NewSlack(token string, optFns ...func(o *Options)) *Slack {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.applyDefaults(defaultSlackBaseURL)

	return &Slack{token: token, opts: opts}
}

// Name implements Connector.
func (s *Slack) Name() string { return "slack" }

// ActionSchema implements Connector.
func (s *Slack) ActionSchema() map[string]map[string]string {
	return map[string]map[string]string{
		"send_message": {
			"channel": "string - channel ID or #name",
			"text":    "string - message text",
		},
		"list_channels": {},
		"channel_history": {
			"channel": "string - channel ID or #name",
			"limit":   "integer - number of messages (optional, default 10)",
		},
	}
}

// Run implements Connector.
func (s *Slack) Run(ctx context.Context, action string, input map[string]any) (string, error) {
	switch action {
	case "send_message":
		channel, okChannel := stringParam(input, "channel")
		text, okText := stringParam(input, "text")
		if !okChannel || !okText {
			return "Error: 'channel' and 'text' are required for 'send_message' action.", nil
		}
		return s.call(ctx, http.MethodPost, "/chat.postMessage", map[string]any{
			"channel": normalizeChannel(channel),
			"text":    text,
		}, nil)

	case "list_channels":
		return s.call(ctx, http.MethodGet, "/conversations.list", nil, url.Values{
			"types": {"public_channel,private_channel"},
		})

	case "channel_history":
		channel, ok := stringParam(input, "channel")
		if !ok {
			return "Error: 'channel' is required for 'channel_history' action.", nil
		}
		limit, ok := intParam(input, "limit")
		if !ok {
			limit = 10
		}
		return s.call(ctx, http.MethodGet, "/conversations.history", nil, url.Values{
			"channel": {normalizeChannel(channel)},
			"limit":   {fmt.Sprint(limit)},
		})

	default:
		return unknownAction(action), nil
	}
}

// Verify implements Connector via auth.test.
func (s *Slack) Verify(ctx context.Context) error {
	result, err := s.call(ctx, http.MethodPost, "/auth.test", map[string]any{}, nil)
	if err != nil {
		return err
	}
	if gjson.Get(result, "ok").Bool() {
		return nil
	}
	return fmt.Errorf("slack token verification failed: %s", result)
}

func (s *Slack) call(ctx context.Context, method, path string, payload any, query url.Values) (string, error) {
	endpoint := s.opts.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	status, body, err := doJSON(ctx, s.opts.HTTPClient, method, endpoint, payload, map[string]string{
		"Authorization": "Bearer " + s.token,
	})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return fmt.Sprintf("Error: Slack API returned status %d: %s", status, compactJSON(body)), nil
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Get("ok").Exists() && !parsed.Get("ok").Bool() {
		return fmt.Sprintf("Error: Slack API error: %s", parsed.Get("error").String()), nil
	}

	return compactJSON(body), nil
}

// normalizeChannel strips a leading '#' so both "#general" and channel IDs
// can be passed through.
func normalizeChannel(channel string) string {
	if len(channel) > 0 && channel[0] == '#' {
		return channel[1:]
	}
	return channel
}
