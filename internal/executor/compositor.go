package executor

import (
	"context"
	"fmt"
	"os"

	"github.com/genricoloni/wallrot/internal/domain"
	"go.uber.org/zap"
)

// Backend names accepted in the configuration
const (
	BackendAuto      = "auto"
	BackendHyprpaper = "hyprpaper"
	BackendSwww      = "swww"
)

// HyprpaperCompositor drives hyprpaper through hyprctl
type HyprpaperCompositor struct {
	logger *zap.Logger
	runner Runner
}

// NewHyprpaperCompositor creates a hyprpaper backend
func NewHyprpaperCompositor(logger *zap.Logger, runner Runner) *HyprpaperCompositor {
	return &HyprpaperCompositor{logger: logger, runner: runner}
}

// Preload loads the image into hyprpaper's memory
func (c *HyprpaperCompositor) Preload(ctx context.Context, path string) error {
	_, err := c.runner.Run(ctx, "hyprctl", "hyprpaper", "preload", path)
	return err
}

// SetWallpaper shows path on output; an empty output means every monitor
func (c *HyprpaperCompositor) SetWallpaper(ctx context.Context, output, path string) error {
	_, err := c.runner.Run(ctx, "hyprctl", "hyprpaper", "wallpaper", output+","+path)
	if err == nil {
		c.logger.Info("Wallpaper set successfully",
			zap.String("command", BackendHyprpaper),
			zap.String("output", output),
			zap.String("path", path))
	}
	return err
}

// UnloadUnused releases every preloaded image not currently displayed
func (c *HyprpaperCompositor) UnloadUnused(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "hyprctl", "hyprpaper", "unload", "unused")
	return err
}

// SwwwCompositor drives the swww daemon, which needs no preloading
type SwwwCompositor struct {
	logger *zap.Logger
	runner Runner
}

// NewSwwwCompositor creates a swww backend
func NewSwwwCompositor(logger *zap.Logger, runner Runner) *SwwwCompositor {
	return &SwwwCompositor{logger: logger, runner: runner}
}

// Preload is a no-op for swww
func (c *SwwwCompositor) Preload(ctx context.Context, path string) error {
	return nil
}

// SetWallpaper shows path on output; an empty output means every monitor
func (c *SwwwCompositor) SetWallpaper(ctx context.Context, output, path string) error {
	args := []string{"img"}
	if output != "" {
		args = append(args, "-o", output)
	}
	args = append(args, path)

	_, err := c.runner.Run(ctx, "swww", args...)
	if err == nil {
		c.logger.Info("Wallpaper set successfully",
			zap.String("command", BackendSwww),
			zap.String("output", output),
			zap.String("path", path))
	}
	return err
}

// UnloadUnused is a no-op for swww
func (c *SwwwCompositor) UnloadUnused(ctx context.Context) error {
	return nil
}

// NewCompositor returns the configured backend, detecting one for "auto"
func NewCompositor(logger *zap.Logger, runner Runner, backend string) (domain.Compositor, error) {
	if backend == BackendAuto || backend == "" {
		backend = detectBackend(logger, runner)
		if backend == "" {
			// Keep going: every compositor call fails softly and is logged
			logger.Warn("No supported wallpaper command found, defaulting to hyprpaper")
			backend = BackendHyprpaper
		}
	}

	logger.Info("Wallpaper setter selected", zap.String("name", backend))

	switch backend {
	case BackendHyprpaper:
		return NewHyprpaperCompositor(logger, runner), nil
	case BackendSwww:
		return NewSwwwCompositor(logger, runner), nil
	default:
		return nil, fmt.Errorf("unknown compositor backend %q", backend)
	}
}

// detectBackend analyzes the environment to choose the wallpaper command
func detectBackend(logger *zap.Logger, runner Runner) string {
	hyprland := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	wayland := os.Getenv("WAYLAND_DISPLAY")

	logger.Debug("Detecting wallpaper command",
		zap.String("hyprland", hyprland),
		zap.String("wayland", wayland))

	// Running on Hyprland - prefer hyprpaper
	if hyprland != "" && runner.LookPath("hyprctl") {
		return BackendHyprpaper
	}

	if runner.LookPath("swww") {
		return BackendSwww
	}

	// Fallback: hyprctl may exist without the instance variable (e.g. from a TTY)
	if runner.LookPath("hyprctl") {
		logger.Info("Using fallback wallpaper command", zap.String("name", BackendHyprpaper))
		return BackendHyprpaper
	}

	return ""
}
