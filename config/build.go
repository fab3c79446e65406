package config

import (
	"fmt"
	"os"

	tvara "github.com/tvarahq/tvara-go"
	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/logging"
	"github.com/tvarahq/tvara-go/model"
	"github.com/tvarahq/tvara-go/prompt"
	"github.com/tvarahq/tvara-go/tool"
	"github.com/tvarahq/tvara-go/workflow"
)

// BuildOptions configures toolkit materialization.
type BuildOptions struct {
	// Logger is threaded through the toolkit and every built agent and
	// workflow; defaults to a no-op.
	Logger logging.Logger

	// Observer is threaded through every built agent and workflow.
	Observer core.Observer

	// Backend overrides the model factory for every agent. Tests use this
	// to substitute a mock backend.
	Backend model.Model

	// WebSearchAPIKey feeds the web_search builtin tool; defaults to the
	// TAVILY_API_KEY environment variable via ${...} expansion in the file.
	WebSearchAPIKey string
}

// Build materializes the configuration: builtin tools by name, connectors by
// type, agents (sub-agents recursively), and workflows with their agent name
// references resolved. Unknown names are errors.
func (c *Config) Build(optFns ...func(o *BuildOptions)) (*tvara.Toolkit, error) {
	opts := BuildOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Observer == nil {
		opts.Observer = core.NopObserver{}
	}

	// Agents and workflows get the observer at construction below, so the
	// toolkit itself stays observer-free; registering through a toolkit that
	// also carried it would deliver every event twice.
	toolkit := tvara.New(tvara.WithLogger(opts.Logger))

	// byName spans top-level agents and every nested sub-agent so workflows
	// can reference either.
	byName := map[string]*agent.Agent{}

	var buildAgent func(ac AgentConfig) (*agent.Agent, error)
	buildAgent = func(ac AgentConfig) (*agent.Agent, error) {
		subAgents := make([]*agent.Agent, 0, len(ac.SubAgents))
		for _, sc := range ac.SubAgents {
			sub, err := buildAgent(sc)
			if err != nil {
				return nil, err
			}
			subAgents = append(subAgents, sub)
		}

		tools, err := buildTools(ac.Tools, &opts)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", ac.Name, err)
		}

		connectors, err := buildConnectors(ac.Connectors)
		if err != nil {
			return nil, fmt.Errorf("agent %q: %w", ac.Name, err)
		}

		var p *prompt.Prompt
		if ac.Prompt != nil {
			p, err = buildPrompt(ac.Name, ac.Description, ac.Prompt)
			if err != nil {
				return nil, fmt.Errorf("agent %q: %w", ac.Name, err)
			}
		}

		a, err := agent.New(ac.Name, func(o *agent.Options) {
			o.Model = firstNonEmpty(ac.Model, c.Defaults.Model)
			o.APIKey = firstNonEmpty(ac.APIKey, c.Defaults.APIKey)
			o.Description = ac.Description
			o.Prompt = p
			o.Tools = tools
			o.Connectors = connectors
			o.SubAgents = subAgents
			o.Backend = opts.Backend
			o.Observer = opts.Observer
			o.Logger = opts.Logger
			if ac.MaxIterations > 0 {
				o.MaxIterations = ac.MaxIterations
			} else if c.Defaults.MaxIterations > 0 {
				o.MaxIterations = c.Defaults.MaxIterations
			}
		})
		if err != nil {
			return nil, err
		}

		byName[a.Name()] = a
		for _, sub := range subAgents {
			byName[sub.Name()] = sub
		}
		return a, nil
	}

	for _, ac := range c.Agents {
		a, err := buildAgent(ac)
		if err != nil {
			return nil, err
		}
		if err := toolkit.RegisterAgent(a); err != nil {
			return nil, err
		}
	}

	for _, wc := range c.Workflows {
		wf, err := c.buildWorkflow(wc, byName, &opts)
		if err != nil {
			return nil, err
		}
		if err := toolkit.RegisterWorkflow(wf); err != nil {
			return nil, err
		}
	}

	return toolkit, nil
}

func (c *Config) buildWorkflow(wc WorkflowConfig, byName map[string]*agent.Agent, opts *BuildOptions) (*workflow.Workflow, error) {
	agents := make([]*agent.Agent, 0, len(wc.Agents))
	for _, name := range wc.Agents {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("workflow %q: unknown agent %q", wc.Name, name)
		}
		agents = append(agents, a)
	}

	var manager *agent.Agent
	if wc.Manager != "" {
		m, ok := byName[wc.Manager]
		if !ok {
			return nil, fmt.Errorf("workflow %q: unknown manager agent %q", wc.Name, wc.Manager)
		}
		manager = m
	}

	return workflow.New(wc.Name, func(o *workflow.Options) {
		o.Agents = agents
		o.Manager = manager
		o.Observer = opts.Observer
		o.Logger = opts.Logger
		if wc.Mode != "" {
			o.Mode = workflow.Mode(wc.Mode)
		}
		if wc.MaxIterations > 0 {
			o.MaxIterations = wc.MaxIterations
		}
	})
}

func buildTools(names []string, opts *BuildOptions) ([]tool.Tool, error) {
	tools := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		switch name {
		case "calculator":
			tools = append(tools, tool.NewCalculator())
		case "date":
			tools = append(tools, tool.NewDate())
		case "web_search":
			tools = append(tools, tool.NewWebSearch(opts.WebSearchAPIKey))
		case "command":
			tools = append(tools, tool.NewCommand())
		default:
			return nil, fmt.Errorf("unknown builtin tool %q", name)
		}
	}
	return tools, nil
}

func buildConnectors(configs []ConnectorConfig) ([]connector.Connector, error) {
	connectors := make([]connector.Connector, 0, len(configs))
	for _, cc := range configs {
		c, err := BuildConnector(cc)
		if err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}
	return connectors, nil
}

// BuildConnector materializes a single connector declaration. The token is
// resolved as: literal Token, then the TokenEnv variable, then the
// conventional environment patterns for the connector type.
func BuildConnector(cc ConnectorConfig) (connector.Connector, error) {
	token := cc.Token
	if token == "" && cc.TokenEnv != "" {
		token = os.Getenv(cc.TokenEnv)
	}
	if token == "" {
		token = connector.TokenFromEnv(cc.Type)
	}

	switch cc.Type {
	case "github":
		return connector.NewGitHub(token), nil
	case "slack":
		return connector.NewSlack(token), nil
	case "notion":
		return connector.NewNotion(token), nil
	default:
		return nil, fmt.Errorf("unknown connector type %q", cc.Type)
	}
}

func buildPrompt(name, description string, pc *PromptConfig) (*prompt.Prompt, error) {
	vars := map[string]string{
		"name":        name,
		"description": description,
	}
	for k, v := range pc.Variables {
		vars[k] = v
	}

	switch {
	case pc.Raw != "":
		return prompt.New(prompt.WithRaw(pc.Raw), prompt.WithVariables(vars))
	case pc.Template != "":
		return prompt.New(prompt.WithTemplate(pc.Template), prompt.WithVariables(vars))
	default:
		return nil, fmt.Errorf("prompt config needs either template or raw")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
