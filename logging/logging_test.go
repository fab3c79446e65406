package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"warn", LogLevelWarn, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"", LogLevelInfo, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNewWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	logger.Info("tool.call.success", "tool", "calculator", "result_chars", 7)

	out := buf.String()
	assert.Contains(t, out, `"msg":"tool.call.success"`)
	assert.Contains(t, out, `"tool":"calculator"`)
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&LoggerConfig{Level: LogLevelWarn, Format: "text", Output: &buf})

	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestObserverEmitsLifecycleEvents(t *testing.T) {
	var buf bytes.Buffer
	obs := NewObserver(New(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf}))

	obs.OnAgentStart("researcher", "run-1", "find papers")
	obs.OnIterationStart("researcher", "run-1", 1, 10)
	obs.OnToolCall("researcher", "web_search", "query")
	obs.OnToolResult("researcher", "web_search", "three results", nil)
	obs.OnToolResult("researcher", "web_search", "", errors.New("timeout"))
	obs.OnFinalResponse("researcher", "run-1", "done")
	obs.OnWorkflowFinish("pipeline", "run-2", false, "")

	out := buf.String()
	for _, want := range []string{
		"agent.run.start",
		"agent.iteration.start",
		"tool.call.start",
		"tool.call.success",
		"tool.call.error",
		"agent.run.final",
		"workflow.run.finish",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "tool.call.error"))
}

func TestNoOpLoggerDiscards(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("a")
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}
