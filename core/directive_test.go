package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectiveToolCall(t *testing.T) {
	raw := `{"tool_call": {"tool_name": "calculator", "tool_input": "2+2"}}`

	d := ParseDirective(raw)

	tc, ok := d.(ToolCall)
	require.True(t, ok, "expected a ToolCall, got %T", d)
	assert.Equal(t, "calculator", tc.Name)
	assert.Equal(t, "2+2", tc.Input)
}

func TestParseDirectiveToolCallStructuredInput(t *testing.T) {
	raw := `{"tool_call": {"tool_name": "web_search", "tool_input": {"query": "golang", "max_results": 3}}}`

	d := ParseDirective(raw)

	tc, ok := d.(ToolCall)
	require.True(t, ok)
	input, ok := tc.Input.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "golang", input["query"])
	assert.Equal(t, float64(3), input["max_results"])
}

func TestParseDirectiveCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "plain fences",
			raw:  "```\n{\"tool_call\": {\"tool_name\": \"date\", \"tool_input\": \"\"}}\n```",
		},
		{
			name: "json fences",
			raw:  "```json\n{\"tool_call\": {\"tool_name\": \"date\", \"tool_input\": \"\"}}\n```",
		},
		{
			name: "fences with surrounding whitespace",
			raw:  "\n\n```json\n{\"tool_call\": {\"tool_name\": \"date\", \"tool_input\": \"\"}}\n```\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDirective(tt.raw)

			tc, ok := d.(ToolCall)
			require.True(t, ok, "expected a ToolCall, got %T", d)
			assert.Equal(t, "date", tc.Name)
		})
	}
}

func TestParseDirectiveConnectorCall(t *testing.T) {
	raw := `{"connector_call": {"connector_name": "github", "connector_action": "list_issues", "connector_input": {"owner": "tvarahq", "repo": "tvara-go"}}}`

	d := ParseDirective(raw)

	cc, ok := d.(ConnectorCall)
	require.True(t, ok, "expected a ConnectorCall, got %T", d)
	assert.Equal(t, "github", cc.Name)
	assert.Equal(t, "list_issues", cc.Action)
	assert.Equal(t, "tvarahq", cc.Input["owner"])
	assert.Equal(t, "tvara-go", cc.Input["repo"])
}

func TestParseDirectiveJSONInsideProse(t *testing.T) {
	raw := `I will look that up. {"tool_call": {"tool_name": "web_search", "tool_input": "tvara"}} Let me run it.`

	d := ParseDirective(raw)

	tc, ok := d.(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "web_search", tc.Name)
}

func TestParseDirectiveFinalText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "The answer is 4."},
		{name: "malformed json", raw: `{"tool_call": {"tool_name": "calc"`},
		{name: "json without directive keys", raw: `{"answer": 4, "unit": "apples"}`},
		{name: "tool_call is not an object", raw: `{"tool_call": "calculator"}`},
		{name: "empty string", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDirective(tt.raw)

			ft, ok := d.(FinalText)
			require.True(t, ok, "expected FinalText, got %T", d)
			assert.Equal(t, tt.raw, ft.Text, "FinalText must carry the original model output")
		})
	}
}

func TestParseDirectiveMissingToolName(t *testing.T) {
	raw := `{"tool_call": {"tool_input": "2+2"}}`

	d := ParseDirective(raw)

	tc, ok := d.(ToolCall)
	require.True(t, ok)
	assert.Empty(t, tc.Name, "missing tool_name resolves to an empty name, handled by lookup")
}

func TestLooksLikeToolFailure(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"The tool failed to fetch results.", true},
		{"Error executing tool 'calculator': bad expression", true},
		{"ERROR EXECUTING TOOL 'x'", true},
		{"Tool Failed", true},
		{"The answer is 4.", false},
		{"I could not find anything useful.", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LooksLikeToolFailure(tt.text), "text: %q", tt.text)
	}
}
