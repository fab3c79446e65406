// Package tool defines the capability interface agents invoke from the
// resolve loop, plus a set of builtin tools (calculator, date, web search,
// command execution) and a generic adapter for exposing plain Go functions
// as tools.
//
// Tools return errors for expected failures; the agent layer converts those
// errors into descriptive history entries and keeps iterating rather than
// aborting the run.
package tool

import "context"

// Tool is a named capability an agent can invoke.
//
// Implementations must be safe for concurrent use when the same tool instance
// is shared across agents running in parallel.
type Tool interface {
	// Name returns the unique tool name used by the model to address it.
	Name() string

	// Description returns a concise explanation shown to models.
	Description() string

	// Parameters returns a JSON-schema-shaped description of the expected
	// input, or nil when the tool accepts free-form input.
	Parameters() map[string]any

	// Call executes the tool. Expected failures are returned as errors, not
	// panics; the agent layer folds them into the conversation history.
	Call(ctx context.Context, input any) (string, error)
}

// Error code constants for ToolError.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeExecutionError  = "EXECUTION_ERROR"
)

// ToolError describes a tool failure with a stable code so callers can
// distinguish argument problems from execution problems.
type ToolError struct {
	Tool    string
	Message string
	Code    string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	return "tool '" + e.Tool + "' failed: " + e.Message
}

// NewToolError constructs a ToolError.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
