package workflow

import "time"

// AgentOutput records one completed agent invocation within a run. Step is
// the 1-based pipeline position in sequential mode and the manager iteration
// in supervised and hierarchical modes.
type AgentOutput struct {
	AgentName string `json:"agent_name"`
	Input     string `json:"input"`
	Output    string `json:"output"`
	Step      int    `json:"step"`
}

// Result is the value every Workflow.Run returns. It is produced fresh per
// run and immutable once returned.
type Result struct {
	RunID        string        `json:"run_id"`
	Workflow     string        `json:"workflow"`
	Mode         Mode          `json:"mode"`
	Success      bool          `json:"success"`
	FinalOutput  string        `json:"final_output"`
	AgentOutputs []AgentOutput `json:"agent_outputs"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}
