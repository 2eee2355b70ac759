package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	defaultStopTimeout  = 3 * time.Second
	defaultPollInterval = 100 * time.Millisecond
)

// WaybarController restarts the status bar so it reloads the palette stylesheet
type WaybarController struct {
	logger       *zap.Logger
	runner       Runner
	procs        ProcessTable
	process      string
	launch       []string
	stopTimeout  time.Duration
	pollInterval time.Duration
}

// NewWaybarController creates a controller for the process named process.
// launch is the command line used to start it again.
func NewWaybarController(logger *zap.Logger, runner Runner, procs ProcessTable, process string, launch []string) *WaybarController {
	if len(launch) == 0 {
		launch = []string{process}
	}
	return &WaybarController{
		logger:       logger,
		runner:       runner,
		procs:        procs,
		process:      process,
		launch:       launch,
		stopTimeout:  defaultStopTimeout,
		pollInterval: defaultPollInterval,
	}
}

// Running reports whether at least one status bar instance is alive
func (w *WaybarController) Running(ctx context.Context) (bool, error) {
	pids, err := w.procs.Find(ctx, w.process)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// Restart terminates every instance and launches a new detached one
func (w *WaybarController) Restart(ctx context.Context) error {
	pids, err := w.procs.Find(ctx, w.process)
	if err != nil {
		return err
	}

	var errs []error
	for _, pid := range pids {
		if err := w.procs.Terminate(ctx, pid); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to stop %s: %w", w.process, errors.Join(errs...))
	}

	if err := waitGone(ctx, w.procs, pids, w.stopTimeout, w.pollInterval); err != nil {
		return fmt.Errorf("%s did not exit: %w", w.process, err)
	}

	if err := w.runner.Start(w.launch[0], w.launch[1:]...); err != nil {
		return err
	}

	w.logger.Info("Status bar restarted",
		zap.String("process", w.process),
		zap.Int("stopped", len(pids)))
	return nil
}

// KittyController pushes colours to running kitty instances over remote control
type KittyController struct {
	logger     *zap.Logger
	runner     Runner
	procs      ProcessTable
	process    string
	colorsFile string
	socket     string
}

// NewKittyController creates a controller for the terminal process.
// socket is optional and passed as --to when set.
func NewKittyController(logger *zap.Logger, runner Runner, procs ProcessTable, process, colorsFile, socket string) *KittyController {
	return &KittyController{
		logger:     logger,
		runner:     runner,
		procs:      procs,
		process:    process,
		colorsFile: colorsFile,
		socket:     socket,
	}
}

// Running reports whether at least one terminal instance is alive
func (k *KittyController) Running(ctx context.Context) (bool, error) {
	pids, err := k.procs.Find(ctx, k.process)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// PushColors applies the generated colours file to every kitty window
func (k *KittyController) PushColors(ctx context.Context) error {
	if _, err := os.Stat(k.colorsFile); err != nil {
		return fmt.Errorf("colors file unavailable: %w", err)
	}

	args := []string{"@"}
	if k.socket != "" {
		args = append(args, "--to", k.socket)
	}
	args = append(args, "set-colors", "--all", "--configured", k.colorsFile)

	if _, err := k.runner.Run(ctx, "kitty", args...); err != nil {
		return err
	}

	k.logger.Debug("Terminal colors pushed", zap.String("file", k.colorsFile))
	return nil
}
