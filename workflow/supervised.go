package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tvarahq/tvara-go/agent"
)

// completedTask is one entry of the manager's working context, serialized
// into every manager prompt so it can see what has already been done.
type completedTask struct {
	Agent     string `json:"agent"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Iteration int    `json:"iteration"`
}

// decision is the parsed form of a manager response.
type decision struct {
	kind        string // "complete", "delegate", "unknown"
	finalAnswer string
	agentName   string
	taskInput   string
}

// parseDecision interprets a manager response. Recognized shapes:
//
//	{"action":"complete","final_answer":...}
//	{"action":"delegate","agent_name":...,"task_input":...}
//
// A "reasoning" field is accepted and ignored. Anything unparseable that
// mentions "complete" is treated as a completion carrying the raw text;
// everything else is unknown.
func parseDecision(raw string) decision {
	body := raw
	if start := strings.IndexByte(raw, '{'); start >= 0 {
		if end := strings.LastIndexByte(raw, '}'); end > start {
			body = raw[start : end+1]
		}
	}

	if gjson.Valid(body) {
		switch gjson.Get(body, "action").String() {
		case "complete":
			answer := gjson.Get(body, "final_answer").String()
			if answer == "" {
				answer = raw
			}
			return decision{kind: "complete", finalAnswer: answer}
		case "delegate":
			return decision{
				kind:      "delegate",
				agentName: gjson.Get(body, "agent_name").String(),
				taskInput: gjson.Get(body, "task_input").String(),
			}
		}
	}

	if strings.Contains(strings.ToLower(raw), "complete") {
		return decision{kind: "complete", finalAnswer: raw}
	}

	return decision{kind: "unknown"}
}

// managerLoop carries the state of one supervised dispatch loop. Hierarchical
// mode reuses it with a non-empty breadcrumb and recursion enabled.
type managerLoop struct {
	workflow *Workflow
	manager  *agent.Agent
	roster   []*agent.Agent
	path     []string // supervisor breadcrumb, empty in flat supervised mode
	recurse  bool
}

// runSupervised drives the flat manager/worker loop over w.agents.
func (w *Workflow) runSupervised(ctx context.Context, input string, result *Result) {
	loop := &managerLoop{
		workflow: w,
		manager:  w.manager,
		roster:   w.agents,
	}
	loop.run(ctx, input, result)
}

// run executes the dispatch loop, writing its outcome into result.
func (l *managerLoop) run(ctx context.Context, input string, result *Result) {
	w := l.workflow
	var tasks []completedTask
	status := "starting"

	for iteration := 1; iteration <= w.maxIterations; iteration++ {
		response, err := l.manager.Run(ctx, l.buildManagerPrompt(input, status, tasks))
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			return
		}

		d := parseDecision(response)
		switch d.kind {
		case "complete":
			result.Success = true
			result.FinalOutput = d.finalAnswer
			return

		case "delegate":
			worker := l.findWorker(d.agentName)
			if worker == nil {
				// Give the manager a chance to correct itself next turn.
				status = fmt.Sprintf("agent '%s' not found", d.agentName)
				w.logger.Warn("workflow.delegate.unknown_agent",
					"workflow", w.name, "manager", l.manager.Name(), "agent", d.agentName)
				continue
			}

			w.observer.OnDelegation(w.name, l.manager.Name(), worker.Name(), d.taskInput, iteration)

			output, err := l.runWorker(ctx, worker, d.taskInput, result)
			if err != nil {
				result.Success = false
				result.Error = err.Error()
				return
			}

			result.AgentOutputs = append(result.AgentOutputs, AgentOutput{
				AgentName: worker.Name(),
				Input:     d.taskInput,
				Output:    output,
				Step:      iteration,
			})
			tasks = append(tasks, completedTask{
				Agent:     worker.Name(),
				Input:     d.taskInput,
				Output:    output,
				Iteration: iteration,
			})
			status = fmt.Sprintf("delegated to %s", worker.Name())
			w.observer.OnWorkflowStep(w.name, worker.Name(), iteration, output)

		default:
			status = "unknown_action"
		}
	}

	result.Success = false
	result.FinalOutput = fmt.Sprintf(
		"The manager did not reach a final answer within %d iterations. Completed %d task(s).",
		w.maxIterations, len(tasks))
	result.Error = ErrMaxIterations
}

// runWorker invokes a delegation target. In hierarchical mode a target that
// is itself a supervisor runs the same loop one level down over its own
// sub-agents; the nested loop's final output (or its exhaustion explanation)
// becomes the task output at this level.
func (l *managerLoop) runWorker(ctx context.Context, worker *agent.Agent, task string, result *Result) (string, error) {
	if !l.recurse || !worker.IsSupervisor() {
		return worker.Run(ctx, task)
	}

	nested := &managerLoop{
		workflow: l.workflow,
		manager:  worker,
		roster:   worker.SubAgents(),
		path:     append(append([]string(nil), l.path...), worker.Name()),
		recurse:  true,
	}

	sub := &Result{}
	nested.run(ctx, task, sub)
	result.AgentOutputs = append(result.AgentOutputs, sub.AgentOutputs...)

	if sub.Error != "" && sub.Error != ErrMaxIterations {
		return "", fmt.Errorf("%s", sub.Error)
	}
	return sub.FinalOutput, nil
}

// findWorker resolves a delegation target by exact name within the roster.
func (l *managerLoop) findWorker(name string) *agent.Agent {
	for _, a := range l.roster {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// buildManagerPrompt embeds the original input, the roster, the status tag,
// the serialized completed tasks, the hierarchy breadcrumb when present, and
// the decision contract.
func (l *managerLoop) buildManagerPrompt(input, status string, tasks []completedTask) string {
	names := make([]string, len(l.roster))
	for i, a := range l.roster {
		names[i] = a.Name()
	}

	serialized := []byte("[]")
	if len(tasks) > 0 {
		if raw, err := json.Marshal(tasks); err == nil {
			serialized = raw
		}
	}

	var sb strings.Builder
	sb.WriteString("You are coordinating a team of agents to fulfil a request.\n\n")
	fmt.Fprintf(&sb, "ORIGINAL REQUEST\n%s\n\n", input)
	fmt.Fprintf(&sb, "AVAILABLE AGENTS\n%s\n\n", strings.Join(names, ", "))
	if len(l.path) > 0 {
		fmt.Fprintf(&sb, "HIERARCHY PATH\n%s\n\n", strings.Join(l.path, " > "))
	}
	fmt.Fprintf(&sb, "CURRENT STATUS\n%s\n\n", status)
	fmt.Fprintf(&sb, "COMPLETED TASKS\n%s\n\n", serialized)
	sb.WriteString(`DECISION FORMAT
Respond with exactly one JSON object:
{"action":"delegate","agent_name":"<agent>","task_input":"<task>","reasoning":"<why>"}
or
{"action":"complete","final_answer":"<answer>","reasoning":"<why>"}`)

	return sb.String()
}
