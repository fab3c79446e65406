package logging

import (
	"github.com/tvarahq/tvara-go/core"
)

// Observer forwards agent and workflow lifecycle events to a Logger as
// structured entries with dotted event names. It is the logging half of the
// observer split: the orchestration core emits events, this type decides how
// they read in the logs.
type Observer struct {
	logger Logger
}

// NewObserver wraps a Logger as a core.Observer. A nil logger falls back to
// the slog default.
func NewObserver(logger Logger) *Observer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Observer{logger: logger}
}

var _ core.Observer = (*Observer)(nil)

// OnAgentStart logs the beginning of an agent run.
func (o *Observer) OnAgentStart(agent, runID, input string) {
	o.logger.Info("agent.run.start", "agent", agent, "run_id", runID, "input_chars", len(input))
}

// OnIterationStart logs the start of one resolve-loop iteration.
func (o *Observer) OnIterationStart(agent, runID string, iteration, maxIterations int) {
	o.logger.Debug("agent.iteration.start", "agent", agent, "run_id", runID, "iteration", iteration, "max_iterations", maxIterations)
}

// OnModelResponse logs receipt of a model response.
func (o *Observer) OnModelResponse(agent string, iteration int, text string) {
	o.logger.Debug("agent.model.response", "agent", agent, "iteration", iteration, "response_chars", len(text))
}

// OnToolCall logs a tool invocation request.
func (o *Observer) OnToolCall(agent, tool string, input any) {
	o.logger.Info("tool.call.start", "agent", agent, "tool", tool)
}

// OnToolResult logs the outcome of a tool invocation.
func (o *Observer) OnToolResult(agent, tool, result string, err error) {
	if err != nil {
		o.logger.Error("tool.call.error", "agent", agent, "tool", tool, "error", err.Error())
		return
	}
	o.logger.Info("tool.call.success", "agent", agent, "tool", tool, "result_chars", len(result))
}

// OnConnectorCall logs a connector action request.
func (o *Observer) OnConnectorCall(agent, connector, action string, input map[string]any) {
	o.logger.Info("connector.call.start", "agent", agent, "connector", connector, "action", action)
}

// OnConnectorResult logs the outcome of a connector action.
func (o *Observer) OnConnectorResult(agent, connector, action, result string, err error) {
	if err != nil {
		o.logger.Error("connector.call.error", "agent", agent, "connector", connector, "action", action, "error", err.Error())
		return
	}
	o.logger.Info("connector.call.success", "agent", agent, "connector", connector, "action", action, "result_chars", len(result))
}

// OnFinalResponse logs the final answer of an agent run.
func (o *Observer) OnFinalResponse(agent, runID, text string) {
	o.logger.Info("agent.run.final", "agent", agent, "run_id", runID, "response_chars", len(text))
}

// OnIterationsExhausted logs that an agent run hit its iteration bound.
func (o *Observer) OnIterationsExhausted(agent, runID string, maxIterations int) {
	o.logger.Warn("agent.run.exhausted", "agent", agent, "run_id", runID, "max_iterations", maxIterations)
}

// OnWorkflowStart logs the beginning of a workflow run.
func (o *Observer) OnWorkflowStart(workflow, mode, runID, input string) {
	o.logger.Info("workflow.run.start", "workflow", workflow, "mode", mode, "run_id", runID, "input_chars", len(input))
}

// OnWorkflowStep logs one completed workflow step.
func (o *Observer) OnWorkflowStep(workflow, agent string, step int, output string) {
	o.logger.Info("workflow.step", "workflow", workflow, "agent", agent, "step", step, "output_chars", len(output))
}

// OnDelegation logs a manager delegating a task to a worker.
func (o *Observer) OnDelegation(workflow, manager, worker, task string, iteration int) {
	o.logger.Info("workflow.delegate", "workflow", workflow, "manager", manager, "worker", worker, "iteration", iteration)
}

// OnWorkflowFinish logs the terminal state of a workflow run.
func (o *Observer) OnWorkflowFinish(workflow, runID string, success bool, finalOutput string) {
	if success {
		o.logger.Info("workflow.run.finish", "workflow", workflow, "run_id", runID, "success", true, "output_chars", len(finalOutput))
		return
	}
	o.logger.Warn("workflow.run.finish", "workflow", workflow, "run_id", runID, "success", false)
}
