// Package workflow composes agents into executable units: a fixed Sequential
// pipeline, a Supervised loop where a manager agent routes work dynamically,
// and a Hierarchical variant where the roster is the manager's sub-agent
// tree.
//
// Workflow.Run is a no-throw boundary: it always returns a *Result and never
// panics, regardless of which internal failure occurred. Run keeps all
// mutable state on the call stack, so sequential re-entrant runs are safe;
// concurrent runs of the same workflow are not guaranteed.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/logging"
)

// Mode selects the execution strategy.
type Mode string

const (
	// Sequential runs agents in list order, chaining outputs to inputs.
	Sequential Mode = "sequential"

	// Supervised lets a manager agent delegate to workers iteratively.
	Supervised Mode = "supervised"

	// Hierarchical is Supervised over the manager's sub-agent tree.
	Hierarchical Mode = "hierarchical"

	// Parallel is reserved and not implemented.
	Parallel Mode = "parallel"

	// Conditional is reserved and not implemented.
	Conditional Mode = "conditional"
)

// DefaultMaxIterations bounds the supervised dispatch loop when no explicit
// limit is set.
const DefaultMaxIterations = 10

// ErrMaxIterations is the exact Error value a Result carries when the
// supervised loop exhausts its budget. Exhaustion is a reportable terminal
// state, distinguishable from hard failures by this text.
const ErrMaxIterations = "Maximum iterations reached"

// Options configures workflow construction.
type Options struct {
	// Agents are the workers, in pipeline order for Sequential mode.
	Agents []*agent.Agent

	// Mode selects the execution strategy; defaults to Sequential.
	Mode Mode

	// Manager drives Supervised and Hierarchical modes. It must not be one
	// of the workers.
	Manager *agent.Agent

	// MaxIterations bounds the supervised dispatch loop.
	MaxIterations int

	// Observer receives lifecycle events; defaults to a no-op.
	Observer core.Observer

	// Logger receives structured logs; defaults to a no-op.
	Logger logging.Logger
}

// Workflow composes agents under one of the execution strategies.
type Workflow struct {
	name          string
	agents        []*agent.Agent
	mode          Mode
	manager       *agent.Agent
	maxIterations int

	observer core.Observer
	logger   logging.Logger
}

// New constructs a Workflow, failing fast on configuration problems: an
// empty pipeline, a missing manager, a manager that is also a worker
// (pointer identity, so two distinct agents sharing a name remain legal), or
// a hierarchical manager without sub-agents.
func New(name string, optFns ...func(o *Options)) (*Workflow, error) {
	opts := Options{
		Mode:          Sequential,
		MaxIterations: DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, fmt.Errorf("workflow name must not be empty")
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("workflow %q: max iterations must be positive, got %d", name, opts.MaxIterations)
	}

	switch opts.Mode {
	case Sequential:
		if len(opts.Agents) == 0 {
			return nil, fmt.Errorf("workflow %q: sequential mode requires at least one agent", name)
		}
	case Supervised:
		if opts.Manager == nil {
			return nil, fmt.Errorf("workflow %q: supervised mode requires a manager agent", name)
		}
		if len(opts.Agents) == 0 {
			return nil, fmt.Errorf("workflow %q: supervised mode requires at least one worker agent", name)
		}
		for _, a := range opts.Agents {
			if a == opts.Manager {
				return nil, fmt.Errorf("workflow %q: manager agent %q must not also be a worker", name, a.Name())
			}
		}
	case Hierarchical:
		if opts.Manager == nil {
			return nil, fmt.Errorf("workflow %q: hierarchical mode requires a manager agent", name)
		}
		if !opts.Manager.IsSupervisor() {
			return nil, fmt.Errorf("workflow %q: hierarchical manager %q has no sub-agents", name, opts.Manager.Name())
		}
	case Parallel, Conditional:
		return nil, fmt.Errorf("workflow %q: mode %q is not implemented", name, opts.Mode)
	default:
		return nil, fmt.Errorf("workflow %q: unknown mode %q", name, opts.Mode)
	}

	observer := opts.Observer
	if observer == nil {
		observer = core.NopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &Workflow{
		name:          name,
		agents:        append([]*agent.Agent(nil), opts.Agents...),
		mode:          opts.Mode,
		manager:       opts.Manager,
		maxIterations: opts.MaxIterations,
		observer:      observer,
		logger:        logger,
	}, nil
}

// Name returns the workflow's identifier.
func (w *Workflow) Name() string { return w.name }

// AttachObserver adds an observer alongside the one configured at
// construction; both receive every workflow event. Registries use this to
// observe workflows they did not build. Call during setup, before runs begin.
func (w *Workflow) AttachObserver(obs core.Observer) {
	if obs == nil {
		return
	}
	w.observer = core.MultiObserver(w.observer, obs)
}

// Mode returns the execution strategy.
func (w *Workflow) Mode() Mode { return w.mode }

// Agents returns the worker roster in declaration order.
func (w *Workflow) Agents() []*agent.Agent { return append([]*agent.Agent(nil), w.agents...) }

// Manager returns the manager agent, or nil in sequential mode.
func (w *Workflow) Manager() *agent.Agent { return w.manager }

// Run executes the workflow. It never panics and never returns an error;
// every internal failure, including a recovered panic, arrives as
// Result{Success: false, Error: ...}.
func (w *Workflow) Run(ctx context.Context, input string) (result *Result) {
	started := time.Now()
	runID := core.NewRunID()

	result = &Result{
		RunID:     runID,
		Workflow:  w.name,
		Mode:      w.mode,
		StartedAt: started,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.FinalOutput = ""
			result.Error = fmt.Sprintf("panic during workflow run: %v", r)
		}
		result.Duration = time.Since(started)
		w.observer.OnWorkflowFinish(w.name, runID, result.Success, result.FinalOutput)
		w.logger.Info("workflow.run.finish",
			"workflow", w.name, "run_id", runID,
			"success", result.Success, "duration_ms", time.Since(started).Milliseconds())
	}()

	w.observer.OnWorkflowStart(w.name, string(w.mode), runID, input)
	w.logger.Info("workflow.run.start", "workflow", w.name, "mode", w.mode, "run_id", runID)

	switch w.mode {
	case Sequential:
		w.runSequential(ctx, input, result)
	case Supervised:
		w.runSupervised(ctx, input, result)
	case Hierarchical:
		w.runHierarchical(ctx, input, result)
	}

	return result
}

// Summary describes the workflow in human-readable form.
func (w *Workflow) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Workflow %q (%s mode)\n", w.name, w.mode)

	switch w.mode {
	case Sequential:
		fmt.Fprintf(&sb, "Pipeline of %d agent(s):\n", len(w.agents))
		for i, a := range w.agents {
			fmt.Fprintf(&sb, "  %d. %s (%s)\n", i+1, a.Name(), a.Model())
		}
	case Supervised:
		fmt.Fprintf(&sb, "Manager: %s (%s)\n", w.manager.Name(), w.manager.Model())
		fmt.Fprintf(&sb, "Workers (%d):\n", len(w.agents))
		for _, a := range w.agents {
			fmt.Fprintf(&sb, "  - %s (%s)\n", a.Name(), a.Model())
		}
	case Hierarchical:
		fmt.Fprintf(&sb, "Manager tree:\n")
		writeTree(&sb, w.manager, 1)
	}

	return strings.TrimRight(sb.String(), "\n")
}

func writeTree(sb *strings.Builder, a *agent.Agent, depth int) {
	fmt.Fprintf(sb, "%s- %s (%s)\n", strings.Repeat("  ", depth), a.Name(), a.Model())
	for _, sub := range a.SubAgents() {
		writeTree(sb, sub, depth+1)
	}
}
