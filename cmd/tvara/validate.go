package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tvarahq/tvara-go/authcache"
	"github.com/tvarahq/tvara-go/config"
)

// ValidateCmd checks the config file and verifies connector credentials.
// Recently verified connectors are skipped via the local auth cache.
type ValidateCmd struct {
	SkipConnectors bool `help:"Only validate the config file, without calling connector APIs."`
	NoCache        bool `help:"Verify every connector even if recently verified."`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	if _, err := cfg.Build(); err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}
	fmt.Printf("Config %s is valid: %d agent(s), %d workflow(s)\n",
		cli.Config, len(cfg.Agents), len(cfg.Workflows))

	if c.SkipConnectors {
		return nil
	}

	cache := authcache.New()
	user := currentUser()
	failures := 0

	for _, cc := range collectConnectors(cfg.Agents) {
		if !c.NoCache && cache.IsAuthenticated(user, cc.Type) {
			fmt.Printf("  connector %-8s ok (cached)\n", cc.Type)
			continue
		}

		conn, err := config.BuildConnector(cc)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = conn.Verify(ctx)
		cancel()

		if err != nil {
			fmt.Printf("  connector %-8s FAILED: %v\n", cc.Type, err)
			failures++
			continue
		}
		fmt.Printf("  connector %-8s ok\n", cc.Type)
		if err := cache.MarkAuthenticated(user, cc.Type, ""); err != nil {
			fmt.Printf("  warning: could not update auth cache: %v\n", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d connector(s) failed verification", failures)
	}
	return nil
}

// collectConnectors walks the agent tree and returns one declaration per
// connector type, first occurrence wins.
func collectConnectors(agents []config.AgentConfig) []config.ConnectorConfig {
	seen := map[string]bool{}
	var out []config.ConnectorConfig

	var walk func([]config.AgentConfig)
	walk = func(list []config.AgentConfig) {
		for _, ac := range list {
			for _, cc := range ac.Connectors {
				if !seen[cc.Type] {
					seen[cc.Type] = true
					out = append(out, cc)
				}
			}
			walk(ac.SubAgents)
		}
	}
	walk(agents)
	return out
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}
