// Package agent implements the reasoning agent: a model binding, a set of
// tools and connectors, a prompt, and the iterative resolve loop that lets
// the model decide whether to invoke a capability, observe its result, and
// continue.
package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/logging"
	"github.com/tvarahq/tvara-go/model"
	"github.com/tvarahq/tvara-go/prompt"
	"github.com/tvarahq/tvara-go/tool"
)

// DefaultMaxIterations bounds the resolve loop when no explicit limit is set.
const DefaultMaxIterations = 10

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Options configures agent construction.
type Options struct {
	// Model names the backend (e.g. "gemini-2.5-flash", "claude-sonnet-4-20250514",
	// "gpt-4o-mini"); required.
	Model string

	// APIKey authenticates against the model backend; required.
	APIKey string

	// Description feeds the default prompt templates.
	Description string

	// Prompt overrides the auto-selected template prompt.
	Prompt *prompt.Prompt

	// Tools the agent may invoke; names must be unique within the agent.
	Tools []tool.Tool

	// Connectors the agent may invoke.
	Connectors []connector.Connector

	// MaxIterations bounds the resolve loop; defaults to DefaultMaxIterations.
	MaxIterations int

	// SubAgents turns this agent into a supervisor over the given tree.
	SubAgents []*Agent

	// Backend replaces the factory-built model binding. Model and APIKey are
	// still validated; injecting a backend does not waive the invariants.
	Backend model.Model

	// Observer receives lifecycle events; defaults to a no-op.
	Observer core.Observer

	// Logger receives structured logs; defaults to a no-op.
	Logger logging.Logger
}

// Agent is a single reasoning unit. It is structurally immutable after
// construction; Run keeps all mutable conversation state on the call stack,
// so sequential re-entrant runs are safe (concurrent runs of the same agent
// are safe too, as long as its tools are).
type Agent struct {
	name          string
	modelName     string
	backend       model.Model
	prompt        *prompt.Prompt
	tools         []tool.Tool
	connectors    []connector.Connector
	maxIterations int
	subAgents     []*Agent

	toolIndex      map[string]tool.Tool
	connectorIndex map[string]connector.Connector

	observer core.Observer
	logger   logging.Logger
}

// New constructs an Agent. Configuration problems (empty model or API key,
// duplicate tool names, an invalid sub-agent tree) fail here, never at run
// time.
func New(name string, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid agent name %q: must match %s", name, nameRe.String())
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("agent %q: model must be specified", name)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("agent %q: api key must be specified", name)
	}
	if opts.MaxIterations <= 0 {
		return nil, fmt.Errorf("agent %q: max iterations must be positive, got %d", name, opts.MaxIterations)
	}

	toolIndex := make(map[string]tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		if _, exists := toolIndex[t.Name()]; exists {
			return nil, fmt.Errorf("agent %q: duplicate tool name %q", name, t.Name())
		}
		toolIndex[t.Name()] = t
	}

	connectorIndex := make(map[string]connector.Connector, len(opts.Connectors))
	for _, c := range opts.Connectors {
		if _, exists := connectorIndex[c.Name()]; exists {
			return nil, fmt.Errorf("agent %q: duplicate connector name %q", name, c.Name())
		}
		connectorIndex[c.Name()] = c
	}

	p := opts.Prompt
	if p == nil {
		var err error
		p, err = prompt.New(
			prompt.WithTemplate(prompt.AutoTemplate(len(opts.Tools) > 0, len(opts.Connectors) > 0)),
			prompt.WithVariables(map[string]string{
				"name":        name,
				"description": opts.Description,
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("agent %q: build default prompt: %w", name, err)
		}
	}
	p.SetTools(opts.Tools)
	p.SetConnectors(opts.Connectors)

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = model.New(opts.Model, opts.APIKey)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", name, err)
		}
	}

	observer := opts.Observer
	if observer == nil {
		observer = core.NopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	a := &Agent{
		name:           name,
		modelName:      opts.Model,
		backend:        backend,
		prompt:         p,
		tools:          append([]tool.Tool(nil), opts.Tools...),
		connectors:     append([]connector.Connector(nil), opts.Connectors...),
		maxIterations:  opts.MaxIterations,
		subAgents:      append([]*Agent(nil), opts.SubAgents...),
		toolIndex:      toolIndex,
		connectorIndex: connectorIndex,
		observer:       observer,
		logger:         logger,
	}

	if err := validateSubTree(a); err != nil {
		return nil, fmt.Errorf("agent %q: %w", name, err)
	}

	return a, nil
}

// Name returns the agent's identifier.
func (a *Agent) Name() string { return a.name }

// AttachObserver adds an observer alongside the one configured at
// construction; both receive every event. Registries use this to observe
// agents they did not build. Call during setup, before runs begin.
func (a *Agent) AttachObserver(obs core.Observer) {
	if obs == nil {
		return
	}
	a.observer = core.MultiObserver(a.observer, obs)
}

// Model returns the configured backend model name.
func (a *Agent) Model() string { return a.modelName }

// MaxIterations returns the resolve loop bound.
func (a *Agent) MaxIterations() int { return a.maxIterations }

// Tools returns the agent's tools in declaration order.
func (a *Agent) Tools() []tool.Tool { return append([]tool.Tool(nil), a.tools...) }

// Connectors returns the agent's connectors in declaration order.
func (a *Agent) Connectors() []connector.Connector {
	return append([]connector.Connector(nil), a.connectors...)
}

// SubAgents returns the agent's direct sub-agents in declaration order.
func (a *Agent) SubAgents() []*Agent { return append([]*Agent(nil), a.subAgents...) }

// IsSupervisor reports whether the agent supervises sub-agents.
func (a *Agent) IsSupervisor() bool { return len(a.subAgents) > 0 }

// Find returns the agent with the given name within this agent's subtree
// (including itself), searching depth-first, or nil when absent.
func (a *Agent) Find(name string) *Agent {
	if a.name == name {
		return a
	}
	for _, sub := range a.subAgents {
		if found := sub.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// validateSubTree rejects nil sub-agents and any pointer appearing twice in
// the assembled tree. Duplicate detection also rules out self or ancestor
// references, so the structure is a tree, never a graph.
func validateSubTree(root *Agent) error {
	seen := map[*Agent]bool{}

	var walk func(node *Agent, path []string) error
	walk = func(node *Agent, path []string) error {
		if seen[node] {
			return fmt.Errorf("sub-agent %q appears more than once in the tree (path %s)",
				node.name, strings.Join(path, " > "))
		}
		seen[node] = true

		for _, sub := range node.subAgents {
			if sub == nil {
				return fmt.Errorf("nil sub-agent under %q", node.name)
			}
			if err := walk(sub, append(path, node.name)); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(root, nil)
}
