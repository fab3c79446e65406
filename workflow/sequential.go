package workflow

import "context"

// runSequential chains agents in list order, each agent's output becoming
// the next one's input verbatim. The first agent error aborts the pipeline,
// preserving the outputs collected so far.
func (w *Workflow) runSequential(ctx context.Context, input string, result *Result) {
	current := input

	for i, a := range w.agents {
		output, err := a.Run(ctx, current)
		if err != nil {
			result.Success = false
			result.FinalOutput = ""
			result.Error = err.Error()
			return
		}

		result.AgentOutputs = append(result.AgentOutputs, AgentOutput{
			AgentName: a.Name(),
			Input:     current,
			Output:    output,
			Step:      i + 1,
		})
		w.observer.OnWorkflowStep(w.name, a.Name(), i+1, output)
		w.logger.Debug("workflow.step", "workflow", w.name, "agent", a.Name(), "step", i+1)

		current = output
	}

	result.Success = true
	result.FinalOutput = current
}
