package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// ProcessTable queries and signals running processes
type ProcessTable interface {
	// Find returns the pids of processes whose name matches, ignoring case
	Find(ctx context.Context, name string) ([]int32, error)

	// Terminate sends SIGTERM to a pid
	Terminate(ctx context.Context, pid int32) error

	// Exists reports whether a pid is still alive
	Exists(ctx context.Context, pid int32) (bool, error)
}

// SystemProcessTable is the gopsutil implementation of ProcessTable
type SystemProcessTable struct {
	logger *zap.Logger
}

// NewSystemProcessTable creates a process table backed by the OS
func NewSystemProcessTable(logger *zap.Logger) *SystemProcessTable {
	return &SystemProcessTable{logger: logger}
}

// Find returns the pids of processes named name (case-insensitive)
func (t *SystemProcessTable) Find(ctx context.Context, name string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var pids []int32
	for _, p := range procs {
		procName, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(procName, name) {
			pids = append(pids, p.Pid)
		}
	}

	t.logger.Debug("Process lookup",
		zap.String("name", name),
		zap.Int("matches", len(pids)))
	return pids, nil
}

// Terminate sends SIGTERM to pid
func (t *SystemProcessTable) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d: %w", pid, err)
	}
	return p.TerminateWithContext(ctx)
}

// Exists reports whether pid is alive
func (t *SystemProcessTable) Exists(ctx context.Context, pid int32) (bool, error) {
	return process.PidExistsWithContext(ctx, pid)
}

// waitGone polls until none of pids exist or the timeout elapses
func waitGone(ctx context.Context, table ProcessTable, pids []int32, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		alive := 0
		for _, pid := range pids {
			ok, err := table.Exists(ctx, pid)
			if err == nil && ok {
				alive++
			}
		}
		if alive == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%d processes still running after %s", alive, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
