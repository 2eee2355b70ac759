package executor

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// PywalGenerator runs a palette tool (pywal by default) against an image.
// The tool writes its colour schemes to its own cache directory.
type PywalGenerator struct {
	logger  *zap.Logger
	runner  Runner
	command []string // {path} is replaced with the image path
}

// NewPywalGenerator creates a palette generator running command
func NewPywalGenerator(logger *zap.Logger, runner Runner, command []string) *PywalGenerator {
	return &PywalGenerator{
		logger:  logger,
		runner:  runner,
		command: command,
	}
}

// Generate derives the palette for path
func (g *PywalGenerator) Generate(ctx context.Context, path string) error {
	if len(g.command) == 0 {
		return errors.New("palette command is not configured")
	}

	args := make([]string, len(g.command)-1)
	for i, arg := range g.command[1:] {
		args[i] = strings.ReplaceAll(arg, "{path}", path)
	}

	if _, err := g.runner.Run(ctx, g.command[0], args...); err != nil {
		return err
	}

	g.logger.Debug("Palette generated",
		zap.String("command", g.command[0]),
		zap.String("path", path))
	return nil
}
