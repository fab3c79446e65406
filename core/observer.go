package core

import "github.com/google/uuid"

// Observer receives structured lifecycle events from agents and workflows.
// The orchestration core emits to an Observer instead of printing; logging
// and metrics are implemented as observers. Hooks carry no return values and
// must not influence control flow. Implementations should be fast and must
// tolerate concurrent invocations when the same observer is shared across
// concurrently running workflows.
//
// Embed NopObserver to implement only the hooks of interest.
type Observer interface {
	// Agent lifecycle. The runID from OnAgentStart identifies the run on
	// the other per-run hooks, so shared observers can keep per-run state
	// without conflating concurrent runs of the same agent.
	OnAgentStart(agent, runID, input string)
	OnIterationStart(agent, runID string, iteration, maxIterations int)
	OnModelResponse(agent string, iteration int, text string)
	OnToolCall(agent, tool string, input any)
	OnToolResult(agent, tool, result string, err error)
	OnConnectorCall(agent, connector, action string, input map[string]any)
	OnConnectorResult(agent, connector, action, result string, err error)
	OnFinalResponse(agent, runID, text string)
	OnIterationsExhausted(agent, runID string, maxIterations int)

	// Workflow lifecycle.
	OnWorkflowStart(workflow, mode, runID, input string)
	OnWorkflowStep(workflow, agent string, step int, output string)
	OnDelegation(workflow, manager, worker, task string, iteration int)
	OnWorkflowFinish(workflow, runID string, success bool, finalOutput string)
}

// NopObserver ignores every event. The zero value is ready to use and safe to
// embed in partial implementations.
type NopObserver struct{}

func (NopObserver) OnAgentStart(string, string, string)                     {}
func (NopObserver) OnIterationStart(string, string, int, int)               {}
func (NopObserver) OnModelResponse(string, int, string)                     {}
func (NopObserver) OnToolCall(string, string, any)                          {}
func (NopObserver) OnToolResult(string, string, string, error)              {}
func (NopObserver) OnConnectorCall(string, string, string, map[string]any)  {}
func (NopObserver) OnConnectorResult(string, string, string, string, error) {}
func (NopObserver) OnFinalResponse(string, string, string)                  {}
func (NopObserver) OnIterationsExhausted(string, string, int)               {}
func (NopObserver) OnWorkflowStart(string, string, string, string)          {}
func (NopObserver) OnWorkflowStep(string, string, int, string)              {}
func (NopObserver) OnDelegation(string, string, string, string, int)        {}
func (NopObserver) OnWorkflowFinish(string, string, bool, string)           {}

// MultiObserver fans every event out to each observer in registration order.
// Nil entries are skipped.
func MultiObserver(observers ...Observer) Observer {
	kept := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	return multiObserver(kept)
}

type multiObserver []Observer

func (m multiObserver) OnAgentStart(agent, runID, input string) {
	for _, o := range m {
		o.OnAgentStart(agent, runID, input)
	}
}

func (m multiObserver) OnIterationStart(agent, runID string, iteration, maxIterations int) {
	for _, o := range m {
		o.OnIterationStart(agent, runID, iteration, maxIterations)
	}
}

func (m multiObserver) OnModelResponse(agent string, iteration int, text string) {
	for _, o := range m {
		o.OnModelResponse(agent, iteration, text)
	}
}

func (m multiObserver) OnToolCall(agent, tool string, input any) {
	for _, o := range m {
		o.OnToolCall(agent, tool, input)
	}
}

func (m multiObserver) OnToolResult(agent, tool, result string, err error) {
	for _, o := range m {
		o.OnToolResult(agent, tool, result, err)
	}
}

func (m multiObserver) OnConnectorCall(agent, connector, action string, input map[string]any) {
	for _, o := range m {
		o.OnConnectorCall(agent, connector, action, input)
	}
}

func (m multiObserver) OnConnectorResult(agent, connector, action, result string, err error) {
	for _, o := range m {
		o.OnConnectorResult(agent, connector, action, result, err)
	}
}

func (m multiObserver) OnFinalResponse(agent, runID, text string) {
	for _, o := range m {
		o.OnFinalResponse(agent, runID, text)
	}
}

func (m multiObserver) OnIterationsExhausted(agent, runID string, maxIterations int) {
	for _, o := range m {
		o.OnIterationsExhausted(agent, runID, maxIterations)
	}
}

func (m multiObserver) OnWorkflowStart(workflow, mode, runID, input string) {
	for _, o := range m {
		o.OnWorkflowStart(workflow, mode, runID, input)
	}
}

func (m multiObserver) OnWorkflowStep(workflow, agent string, step int, output string) {
	for _, o := range m {
		o.OnWorkflowStep(workflow, agent, step, output)
	}
}

func (m multiObserver) OnDelegation(workflow, manager, worker, task string, iteration int) {
	for _, o := range m {
		o.OnDelegation(workflow, manager, worker, task, iteration)
	}
}

func (m multiObserver) OnWorkflowFinish(workflow, runID string, success bool, finalOutput string) {
	for _, o := range m {
		o.OnWorkflowFinish(workflow, runID, success, finalOutput)
	}
}

// NewRunID returns a fresh identifier for one agent or workflow invocation.
func NewRunID() string {
	return uuid.NewString()
}
