package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tvara "github.com/tvarahq/tvara-go"
	"github.com/tvarahq/tvara-go/config"
	"github.com/tvarahq/tvara-go/logging"
)

// RunCmd executes a single agent or workflow and prints the result.
type RunCmd struct {
	Target string `short:"t" help:"Agent or workflow name. Optional when the config declares exactly one runnable entry."`
	Input  string `short:"i" help:"Input text for the run; read from stdin when omitted."`
	JSON   bool   `help:"Print the full result as JSON instead of the output text."`
}

func (c *RunCmd) Run(cli *CLI) error {
	logger, err := buildLogger(cli)
	if err != nil {
		return err
	}

	input := c.Input
	if input == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read input from stdin: %w", err)
		}
		input = strings.TrimSpace(string(raw))
	}
	if input == "" {
		return fmt.Errorf("no input: pass --input or pipe text on stdin")
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	toolkit, err := cfg.Build(func(o *config.BuildOptions) {
		o.Logger = logger
		o.Observer = logging.NewObserver(logger)
	})
	if err != nil {
		return fmt.Errorf("build toolkit: %w", err)
	}

	target := c.Target
	if target == "" {
		target = cfg.Serve.Target
	}
	if target == "" {
		target, err = soleTarget(toolkit)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if wf := toolkit.Workflow(target); wf != nil {
		result := wf.Run(ctx, input)
		if c.JSON {
			return printJSON(result)
		}
		if !result.Success {
			return fmt.Errorf("workflow %s failed: %s", target, result.Error)
		}
		fmt.Println(result.FinalOutput)
		return nil
	}

	if a := toolkit.Agent(target); a != nil {
		output, err := a.Run(ctx, input)
		if c.JSON {
			return printJSON(map[string]any{
				"target":  target,
				"output":  output,
				"success": err == nil,
			})
		}
		if err != nil {
			return fmt.Errorf("agent %s failed: %w", target, err)
		}
		fmt.Println(output)
		return nil
	}

	return fmt.Errorf("no agent or workflow named %q in %s", target, cli.Config)
}

func soleTarget(toolkit *tvara.Toolkit) (string, error) {
	agents := toolkit.Agents()
	workflows := toolkit.Workflows()

	switch {
	case len(workflows) == 1 && len(agents) == 0:
		return workflows[0], nil
	case len(agents) == 1 && len(workflows) == 0:
		return agents[0], nil
	default:
		return "", fmt.Errorf("--target is required: config declares %d agent(s) and %d workflow(s)",
			len(agents), len(workflows))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
