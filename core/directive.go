package core

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Directive is the interpretation of one model response. Exactly one of the
// three shapes applies: the model asked for a tool, asked for a connector
// action, or produced free text.
type Directive interface {
	isDirective()
}

// ToolCall asks for a named tool to be invoked with an arbitrary JSON input.
type ToolCall struct {
	Name  string
	Input any
}

// ConnectorCall asks for a named connector action with a structured input map.
type ConnectorCall struct {
	Name   string
	Action string
	Input  map[string]any
}

// FinalText is a model response carrying no structured call. Text holds the
// original, unstripped model output.
type FinalText struct {
	Text string
}

func (ToolCall) isDirective()      {}
func (ConnectorCall) isDirective() {}
func (FinalText) isDirective()     {}

// ParseDirective interprets raw model output as a Directive. It tolerates
// Markdown code fences around the JSON body and prose around a single JSON
// object. Malformed JSON, or JSON without a tool_call or connector_call key,
// yields FinalText; parsing never fails.
func ParseDirective(raw string) Directive {
	body := extractJSON(raw)
	if body == "" || !gjson.Valid(body) {
		return FinalText{Text: raw}
	}

	if tc := gjson.Get(body, "tool_call"); tc.IsObject() {
		return ToolCall{
			Name:  tc.Get("tool_name").String(),
			Input: tc.Get("tool_input").Value(),
		}
	}

	if cc := gjson.Get(body, "connector_call"); cc.IsObject() {
		input, _ := cc.Get("connector_input").Value().(map[string]any)
		return ConnectorCall{
			Name:   cc.Get("connector_name").String(),
			Action: cc.Get("connector_action").String(),
			Input:  input,
		}
	}

	return FinalText{Text: raw}
}

// LooksLikeToolFailure reports whether free text reads like an intermediate
// tool failure rather than a final answer. The resolve loop keeps iterating on
// such responses instead of returning them. The phrase match mirrors the error
// strings produced by the loop itself; callers must not terminate on text for
// which this returns true.
func LooksLikeToolFailure(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "tool failed") ||
		strings.Contains(lower, "error executing tool")
}

// extractJSON returns the outermost JSON object candidate within s, after
// removing surrounding code fences. Empty when no brace-delimited span exists.
func extractJSON(s string) string {
	t := stripFences(s)

	start := strings.IndexByte(t, '{')
	end := strings.LastIndexByte(t, '}')
	if start < 0 || end <= start {
		return ""
	}

	return t[start : end+1]
}

// stripFences removes a leading ``` or ```json fence line and a trailing ```
// fence, leaving the body untouched.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		if i := strings.IndexByte(t, '\n'); i >= 0 {
			t = t[i+1:]
		} else {
			t = strings.TrimPrefix(t, "```")
		}
	}

	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")

	return strings.TrimSpace(t)
}
