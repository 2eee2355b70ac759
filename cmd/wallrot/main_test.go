package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/wallrot/internal/config"
	"github.com/genricoloni/wallrot/internal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	err := fx.ValidateApp(AppOptions(zap.NewNop(), config.Overrides{}))
	if err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestNewLogger specifically verifies the logger configuration
func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		if err != nil {
			t.Fatalf("Failed to create logger (debug=%v): %v", debug, err)
		}
		if logger == nil {
			t.Fatal("Logger should not be nil")
		}
		logger.Info("Test logger initialization")
	}
}

func TestRootCmd_Args(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantMode  domain.Mode
		wantRun   bool
		wantError bool
	}{
		{name: "No argument defaults to change", args: nil, wantMode: domain.ModeChange, wantRun: true},
		{name: "Init", args: []string{"init"}, wantMode: domain.ModeInit, wantRun: true},
		{name: "Change", args: []string{"change"}, wantMode: domain.ModeChange, wantRun: true},
		{name: "Unknown mode", args: []string{"foo"}, wantError: true},
		{name: "Too many arguments", args: []string{"init", "change"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotMode domain.Mode
			cmd := newRootCmd(func(ctx context.Context, opts options, mode domain.Mode) error {
				called = true
				gotMode = mode
				return nil
			})
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			err := cmd.Execute()
			if tt.wantError {
				if err == nil {
					t.Fatal("Expected usage error, got nil")
				}
				if !errors.Is(err, domain.ErrInvalidMode) {
					t.Errorf("Expected ErrInvalidMode, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if called != tt.wantRun {
				t.Errorf("Expected run called=%v, got %v", tt.wantRun, called)
			}
			if tt.wantRun && gotMode != tt.wantMode {
				t.Errorf("Expected mode %q, got %q", tt.wantMode, gotMode)
			}
		})
	}
}

func TestRootCmd_Flags(t *testing.T) {
	var got options
	cmd := newRootCmd(func(ctx context.Context, opts options, mode domain.Mode) error {
		got = opts
		return nil
	})
	cmd.SetArgs([]string{"--config", "/tmp/w.toml", "--dir", "/tmp/walls", "--debug", "init"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.configPath != "/tmp/w.toml" || got.dir != "/tmp/walls" || !got.debug {
		t.Errorf("Flags not parsed: %+v", got)
	}
}

// TestRun_InvalidConfig verifies that a broken config is reported
// before any component is built
func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("keep = 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := run(context.Background(), options{configPath: path, dir: filepath.Join(dir, "walls")}, domain.ModeInit)
	if err == nil {
		t.Fatal("Expected configuration error, got nil")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "walls")); !os.IsNotExist(statErr) {
		t.Error("Cache directory must not be created on configuration error")
	}
}
