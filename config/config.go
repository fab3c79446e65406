// Package config loads declarative YAML definitions of agents, workflows,
// tools, and connectors, and materializes them into a runnable Toolkit.
// String fields support ${VAR} environment expansion, so API keys and tokens
// stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults fill in per-agent fields left empty.
type Defaults struct {
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key"`
	MaxIterations int    `yaml:"max_iterations"`
}

// PromptConfig selects the agent persona: a registered template (with
// variables) or a raw prompt text. At most one of Template and Raw may be
// set; neither means the capability-based default template.
type PromptConfig struct {
	Template  string            `yaml:"template"`
	Raw       string            `yaml:"raw"`
	Variables map[string]string `yaml:"variables"`
}

// ConnectorConfig declares one connector attachment. Token wins over
// TokenEnv; with neither set the token is resolved from the conventional
// environment patterns for the connector type.
type ConnectorConfig struct {
	Type     string `yaml:"type"` // github | slack | notion
	Token    string `yaml:"token"`
	TokenEnv string `yaml:"token_env"`
}

// AgentConfig declares one agent. SubAgents nest recursively, turning the
// agent into a supervisor.
type AgentConfig struct {
	Name          string            `yaml:"name"`
	Model         string            `yaml:"model"`
	APIKey        string            `yaml:"api_key"`
	Description   string            `yaml:"description"`
	Prompt        *PromptConfig     `yaml:"prompt"`
	MaxIterations int               `yaml:"max_iterations"`
	Tools         []string          `yaml:"tools"`
	Connectors    []ConnectorConfig `yaml:"connectors"`
	SubAgents     []AgentConfig     `yaml:"sub_agents"`
}

// WorkflowConfig declares one workflow over named agents.
type WorkflowConfig struct {
	Name          string   `yaml:"name"`
	Mode          string   `yaml:"mode"`
	Agents        []string `yaml:"agents"`
	Manager       string   `yaml:"manager"`
	MaxIterations int      `yaml:"max_iterations"`
}

// ServeConfig declares the HTTP serving defaults for the CLI.
type ServeConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Target  string `yaml:"target"`
	Metrics bool   `yaml:"metrics"`
}

// Config is the root of a tvara YAML file.
type Config struct {
	Defaults  Defaults         `yaml:"defaults"`
	Agents    []AgentConfig    `yaml:"agents"`
	Workflows []WorkflowConfig `yaml:"workflows"`
	Serve     ServeConfig      `yaml:"serve"`
}

// Load reads and decodes a config file. Unknown YAML fields are errors, and
// every string field undergoes ${VAR} environment expansion.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes config bytes; see Load.
func Parse(raw []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	seen := map[string]bool{}

	var checkAgents func(agents []AgentConfig) error
	checkAgents = func(agents []AgentConfig) error {
		for _, a := range agents {
			if a.Name == "" {
				return fmt.Errorf("config: agent with empty name")
			}
			if seen[a.Name] {
				return fmt.Errorf("config: duplicate agent name %q", a.Name)
			}
			seen[a.Name] = true
			if err := checkAgents(a.SubAgents); err != nil {
				return err
			}
		}
		return nil
	}
	if err := checkAgents(c.Agents); err != nil {
		return err
	}

	for _, w := range c.Workflows {
		if w.Name == "" {
			return fmt.Errorf("config: workflow with empty name")
		}
	}

	return nil
}
