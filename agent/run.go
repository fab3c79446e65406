package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/tool"
)

// ExhaustedMessage is returned when the resolve loop uses up its iteration
// budget without reaching a final answer. Exhaustion is a normal terminal
// outcome, not an error.
const ExhaustedMessage = "Maximum iterations reached. Please try rephrasing your request."

// Run executes one resolve-loop invocation: think, optionally act and
// observe, repeat until the model produces a final answer or the iteration
// budget runs out.
//
// Unlike Workflow.Run, Run keeps the error return: a model backend failure
// or a prompt rendering failure aborts the run with a non-nil error. Tool
// and connector failures never do; they become history entries the model
// sees on its next turn.
func (a *Agent) Run(ctx context.Context, input string) (string, error) {
	runID := core.NewRunID()
	a.observer.OnAgentStart(a.name, runID, input)
	a.logger.Debug("agent.run.start", "agent", a.name, "run_id", runID)

	if len(a.tools) == 0 && len(a.connectors) == 0 {
		return a.runBasic(ctx, runID, input)
	}

	base, err := a.prompt.Render()
	if err != nil {
		return "", fmt.Errorf("agent %q: render prompt: %w", a.name, err)
	}

	history := []string{"User: " + input}

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		a.observer.OnIterationStart(a.name, runID, iteration, a.maxIterations)

		response, err := a.backend.GetResponse(ctx, a.buildTurnPrompt(base, history))
		if err != nil {
			return "", fmt.Errorf("agent %q: model call failed: %w", a.name, err)
		}
		a.observer.OnModelResponse(a.name, iteration, response)

		switch d := core.ParseDirective(response).(type) {
		case core.ToolCall:
			history = append(history, a.actOnTool(ctx, d)...)

		case core.ConnectorCall:
			history = append(history, a.actOnConnector(ctx, d)...)

		case core.FinalText:
			if core.LooksLikeToolFailure(d.Text) {
				// An intermediate failure report, not a final answer.
				history = append(history, "Assistant: "+d.Text)
				continue
			}
			a.observer.OnFinalResponse(a.name, runID, d.Text)
			a.logger.Debug("agent.run.final", "agent", a.name, "run_id", runID, "iterations", iteration)
			return d.Text, nil
		}
	}

	a.observer.OnIterationsExhausted(a.name, runID, a.maxIterations)
	a.logger.Warn("agent.run.exhausted", "agent", a.name, "run_id", runID, "max_iterations", a.maxIterations)
	return ExhaustedMessage, nil
}

// runBasic is the zero-capability single shot: minimal prompt, one model
// call, text returned verbatim with no directive parsing.
func (a *Agent) runBasic(ctx context.Context, runID, input string) (string, error) {
	persona, err := a.prompt.RenderBasic()
	if err != nil {
		return "", fmt.Errorf("agent %q: render prompt: %w", a.name, err)
	}

	response, err := a.backend.GetResponse(ctx, persona+"\n\n"+input)
	if err != nil {
		return "", fmt.Errorf("agent %q: model call failed: %w", a.name, err)
	}

	a.observer.OnFinalResponse(a.name, runID, response)
	return response, nil
}

// buildTurnPrompt combines the static rendered prompt with the accumulated
// conversation history and the instruction for the next turn.
func (a *Agent) buildTurnPrompt(base string, history []string) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\nCONVERSATION SO FAR\n")
	sb.WriteString(strings.Join(history, "\n"))
	sb.WriteString("\n\nContinue. Respond according to the response format above.")
	return sb.String()
}

// actOnTool resolves and invokes a tool, returning the two observation
// entries for the history: the call that was made and its result or error.
func (a *Agent) actOnTool(ctx context.Context, call core.ToolCall) []string {
	callEntry := fmt.Sprintf("Tool call: %s with input %s", call.Name, compactAny(call.Input))

	t, ok := resolveByName(call.Name, a.tools, a.toolIndex, tool.Tool.Name)
	if !ok {
		a.observer.OnToolResult(a.name, call.Name, "", fmt.Errorf("tool %q not found", call.Name))
		return []string{callEntry, fmt.Sprintf("Error: tool '%s' not found", call.Name)}
	}

	a.observer.OnToolCall(a.name, t.Name(), call.Input)

	result, err := t.Call(ctx, call.Input)
	a.observer.OnToolResult(a.name, t.Name(), result, err)
	if err != nil {
		return []string{callEntry, fmt.Sprintf("Error executing tool '%s': %s", t.Name(), err.Error())}
	}

	return []string{callEntry, "Tool result: " + result}
}

// actOnConnector mirrors actOnTool for connector actions.
func (a *Agent) actOnConnector(ctx context.Context, call core.ConnectorCall) []string {
	callEntry := fmt.Sprintf("Connector call: %s action %s with input %s",
		call.Name, call.Action, compactAny(call.Input))

	c, ok := resolveByName(call.Name, a.connectors, a.connectorIndex, connector.Connector.Name)
	if !ok {
		a.observer.OnConnectorResult(a.name, call.Name, call.Action, "", fmt.Errorf("connector %q not found", call.Name))
		return []string{callEntry, fmt.Sprintf("Error: connector '%s' not found", call.Name)}
	}

	a.observer.OnConnectorCall(a.name, c.Name(), call.Action, call.Input)

	result, err := c.Run(ctx, call.Action, call.Input)
	a.observer.OnConnectorResult(a.name, c.Name(), call.Action, result, err)
	if err != nil {
		return []string{callEntry, fmt.Sprintf("Error executing connector '%s': %s", c.Name(), err.Error())}
	}

	return []string{callEntry, "Connector result: " + result}
}

// resolveByName is the two-phase lookup: exact name via the index built at
// construction, then a case-insensitive substring fallback (either direction)
// over the declaration-ordered slice. The substring fallback tolerates model
// typos like "calculator_tool" for "calculator"; when several entries match,
// the first in declaration order wins.
func resolveByName[T any](name string, ordered []T, index map[string]T, nameOf func(T) string) (T, bool) {
	if hit, ok := index[name]; ok {
		return hit, true
	}

	lower := strings.ToLower(name)
	for _, candidate := range ordered {
		cn := strings.ToLower(nameOf(candidate))
		if strings.Contains(cn, lower) || strings.Contains(lower, cn) {
			return candidate, true
		}
	}

	var zero T
	return zero, false
}

// compactAny renders a directive input for history entries.
func compactAny(v any) string {
	if v == nil {
		return "{}"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
