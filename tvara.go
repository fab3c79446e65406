// Package tvara provides a high-level façade over the agent and workflow
// packages: a named registry of agents and workflows with run entry points.
// Most applications interact with this package by:
//  1. Creating a Toolkit via New() (optionally wiring a logger and observers)
//  2. Registering agents and workflows
//  3. Invoking them by name with RunAgent / RunWorkflow
//
// The façade delegates orchestration to the agent and workflow packages while
// keeping setup and serving ergonomics concise.
package tvara

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/logging"
	"github.com/tvarahq/tvara-go/tool"
	"github.com/tvarahq/tvara-go/workflow"
)

// Options configures a Toolkit.
type Options struct {
	// Logger receives structured logs; defaults to a no-op.
	Logger logging.Logger

	// Observer is attached to each agent and workflow as it is registered,
	// alongside any observer configured at construction, and from then on
	// receives their lifecycle events.
	Observer core.Observer
}

// WithLogger wires a logger into the toolkit.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithObserver wires an observer into the toolkit.
func WithObserver(observer core.Observer) func(o *Options) {
	return func(o *Options) { o.Observer = observer }
}

// Toolkit is the named registry tying agents and workflows to the serving
// layer. Registration is expected during setup; concurrent Run calls after
// that are safe.
type Toolkit struct {
	mu        sync.RWMutex
	agents    map[string]*agent.Agent
	workflows map[string]*workflow.Workflow

	logger   logging.Logger
	observer core.Observer
}

// New constructs an empty Toolkit.
func New(optFns ...func(o *Options)) *Toolkit {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	observer := opts.Observer
	if observer == nil {
		observer = core.NopObserver{}
	}

	return &Toolkit{
		agents:    make(map[string]*agent.Agent),
		workflows: make(map[string]*workflow.Workflow),
		logger:    logger,
		observer:  observer,
	}
}

// RegisterAgent adds an agent under its name. Duplicate names are rejected.
func (t *Toolkit) RegisterAgent(a *agent.Agent) error {
	if a == nil {
		return fmt.Errorf("cannot register a nil agent")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.agents[a.Name()]; exists {
		return fmt.Errorf("agent %q already registered", a.Name())
	}
	if _, nop := t.observer.(core.NopObserver); !nop {
		a.AttachObserver(t.observer)
	}
	t.agents[a.Name()] = a
	t.logger.Debug("toolkit.register.agent", "agent", a.Name())
	return nil
}

// RegisterWorkflow adds a workflow under its name. Duplicate names are
// rejected.
func (t *Toolkit) RegisterWorkflow(w *workflow.Workflow) error {
	if w == nil {
		return fmt.Errorf("cannot register a nil workflow")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.workflows[w.Name()]; exists {
		return fmt.Errorf("workflow %q already registered", w.Name())
	}
	if _, nop := t.observer.(core.NopObserver); !nop {
		w.AttachObserver(t.observer)
	}
	t.workflows[w.Name()] = w
	t.logger.Debug("toolkit.register.workflow", "workflow", w.Name())
	return nil
}

// Agent returns the registered agent with the given name, or nil.
func (t *Toolkit) Agent(name string) *agent.Agent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.agents[name]
}

// Workflow returns the registered workflow with the given name, or nil.
func (t *Toolkit) Workflow(name string) *workflow.Workflow {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.workflows[name]
}

// RunAgent invokes a registered agent by name.
func (t *Toolkit) RunAgent(ctx context.Context, name, input string) (string, error) {
	a := t.Agent(name)
	if a == nil {
		return "", fmt.Errorf("agent %q not registered", name)
	}
	return a.Run(ctx, input)
}

// RunWorkflow invokes a registered workflow by name. The error is non-nil
// only for an unknown name; execution failures arrive inside the Result.
func (t *Toolkit) RunWorkflow(ctx context.Context, name, input string) (*workflow.Result, error) {
	w := t.Workflow(name)
	if w == nil {
		return nil, fmt.Errorf("workflow %q not registered", name)
	}
	return w.Run(ctx, input), nil
}

// Agents lists the registered agent names, sorted.
func (t *Toolkit) Agents() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.agents))
	for name := range t.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Workflows lists the registered workflow names, sorted.
func (t *Toolkit) Workflows() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.workflows))
	for name := range t.workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentInfo describes a registered agent for inventory endpoints.
type AgentInfo struct {
	Name       string   `json:"name"`
	Model      string   `json:"model"`
	Tools      []string `json:"tools,omitempty"`
	Connectors []string `json:"connectors,omitempty"`
	SubAgents  []string `json:"sub_agents,omitempty"`
}

// WorkflowInfo describes a registered workflow for inventory endpoints.
type WorkflowInfo struct {
	Name    string   `json:"name"`
	Mode    string   `json:"mode"`
	Agents  []string `json:"agents"`
	Manager string   `json:"manager,omitempty"`
}

// Info is the toolkit inventory snapshot served by GET /info.
type Info struct {
	Agents    []AgentInfo    `json:"agents"`
	Workflows []WorkflowInfo `json:"workflows"`
}

// Info builds the current inventory snapshot.
func (t *Toolkit) Info() Info {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info := Info{
		Agents:    make([]AgentInfo, 0, len(t.agents)),
		Workflows: make([]WorkflowInfo, 0, len(t.workflows)),
	}

	for _, name := range sortedKeys(t.agents) {
		a := t.agents[name]
		info.Agents = append(info.Agents, AgentInfo{
			Name:       a.Name(),
			Model:      a.Model(),
			Tools:      toolNames(a.Tools()),
			Connectors: connectorNames(a.Connectors()),
			SubAgents:  agentNames(a.SubAgents()),
		})
	}

	for _, name := range sortedKeys(t.workflows) {
		w := t.workflows[name]
		wi := WorkflowInfo{
			Name:   w.Name(),
			Mode:   string(w.Mode()),
			Agents: agentNames(w.Agents()),
		}
		if m := w.Manager(); m != nil {
			wi.Manager = m.Name()
		}
		info.Workflows = append(info.Workflows, wi)
	}

	return info
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toolNames(tools []tool.Tool) []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

func connectorNames(connectors []connector.Connector) []string {
	names := make([]string, len(connectors))
	for i, c := range connectors {
		names[i] = c.Name()
	}
	return names
}

func agentNames(agents []*agent.Agent) []string {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name()
	}
	return names
}
