package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes external programs.
// This abstraction allows us to record command lines in tests.
type Runner interface {
	// Run executes a command and waits for it, returning combined output
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start launches a command detached from the current process
	Start(name string, args ...string) error

	// LookPath reports whether a binary is available in PATH
	LookPath(name string) bool
}

// ExecRunner is the os/exec implementation of Runner
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a new command runner
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run executes a command and waits for it
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.logger.Debug("Running command",
		zap.String("command", name),
		zap.Strings("args", args))

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s failed: %w (output: %s)", name, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// Start launches a command in its own session so it survives our exit
func (r *ExecRunner) Start(name string, args ...string) error {
	r.logger.Debug("Launching detached command",
		zap.String("command", name),
		zap.Strings("args", args))

	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	return cmd.Process.Release()
}

// LookPath checks if a binary exists in PATH
func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
