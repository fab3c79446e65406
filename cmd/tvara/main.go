// Command tvara runs agents and workflows declared in a YAML config file.
//
// Usage:
//
//	tvara run --config tvara.yaml --target researcher --input "question"
//	tvara serve --config tvara.yaml --port 8080 --metrics
//	tvara validate --config tvara.yaml
//	tvara deploy --config tvara.yaml --output deploy/
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/tvarahq/tvara-go/config"
	"github.com/tvarahq/tvara-go/logging"
)

// CLI defines the command-line interface.
type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run an agent or workflow once and print the result."`
	Serve    ServeCmd    `cmd:"" help:"Serve the toolkit over HTTP."`
	Validate ValidateCmd `cmd:"" help:"Validate the config file and verify connector credentials."`
	Deploy   DeployCmd   `cmd:"" help:"Generate deployment artifacts (Dockerfile, compose, systemd)."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." default:"tvara.yaml" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (text or json)." default:"text"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("tvara version %s\n", version)
	return nil
}

func buildLogger(cli *CLI) (logging.Logger, error) {
	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.LoggerConfig{
		Level:  level,
		Format: cli.LogFormat,
		Output: os.Stderr,
	}), nil
}

func loadConfig(cli *CLI) (*config.Config, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cli.Config, err)
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("tvara"),
		kong.Description("tvara - agent orchestration toolkit"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
