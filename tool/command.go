package tool

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

// deniedPatterns block obviously destructive snippets before execution.
var deniedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+(-rf|-fr|--recursive)`),
	regexp.MustCompile(`>\s*/dev/`),
	regexp.MustCompile(`>\s*/etc/`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;`),
	regexp.MustCompile(`(wget|curl).*\|\s*sh`),
	regexp.MustCompile(`mkfs|fdisk|shutdown|reboot`),
	regexp.MustCompile(`--no-preserve-root`),
}

// CommandOptions configures the command execution tool.
type CommandOptions struct {
	// Interpreter and InterpreterArg form the command prefix the snippet is
	// passed to, e.g. ("sh", "-c") or ("python3", "-c").
	Interpreter    string
	InterpreterArg string

	// Timeout bounds one execution.
	Timeout time.Duration

	// WorkDir sets the working directory; empty means inherit.
	WorkDir string
}

type commandTool struct {
	opts CommandOptions
}

type commandInput struct {
	Code string `json:"code" description:"Code or shell snippet to execute"`
}

// NewCommand returns a tool that runs a code or shell snippet through a
// configured interpreter with a timeout and a denylist of destructive
// patterns. Defaults to `sh -c` with a 30 second timeout.
func NewCommand(optFns ...func(o *CommandOptions)) Tool {
	opts := CommandOptions{
		Interpreter:    "sh",
		InterpreterArg: "-c",
		Timeout:        30 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	ct := &commandTool{opts: opts}

	return NewFunc("command", "Executes a code or shell snippet and returns its output.",
		func(ctx context.Context, in commandInput) (string, error) {
			return ct.execute(ctx, in.Code)
		})
}

func (c *commandTool) execute(ctx context.Context, code string) (string, error) {
	for _, pattern := range deniedPatterns {
		if pattern.MatchString(code) {
			return "", fmt.Errorf("snippet rejected: matches denied pattern %q", pattern.String())
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.opts.Interpreter, c.opts.InterpreterArg, code)
	cmd.Dir = c.opts.WorkDir

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("execution timed out after %s", c.opts.Timeout)
	}
	if err != nil {
		return "", fmt.Errorf("execution failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	result := strings.TrimSpace(string(out))
	if result == "" {
		return "(no output)", nil
	}

	return result, nil
}
