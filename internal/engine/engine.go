package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/genricoloni/wallrot/internal/domain"
	"github.com/genricoloni/wallrot/internal/fetcher"
	"github.com/genricoloni/wallrot/internal/processor"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Step names reported in ApplyResult
const (
	StepPreload   = "preload"
	StepSet       = "set"
	StepUnload    = "unload"
	StepPalette   = "palette"
	StepStatusBar = "statusbar"
	StepTerminal  = "terminal"
	StepNotify    = "notify"
)

// Deps are the collaborators of the Engine, resolved by Fx
type Deps struct {
	fx.In

	Logger     *zap.Logger
	Config     domain.Config
	Resolution *domain.ScreenResolution
	Prober     domain.Prober
	Fetcher    domain.Fetcher
	Inspector  domain.Inspector
	Cache      domain.Cache
	Compositor domain.Compositor
	Palette    domain.PaletteGenerator
	StatusBar  domain.StatusBar
	Terminal   domain.Terminal
	Notifier   domain.Notifier
}

// Outcome summarizes a rotation
type Outcome struct {
	Mode       domain.Mode
	Applied    bool
	File       domain.WallpaperFile
	Downloaded bool
	Pruned     int
	Result     domain.ApplyResult
}

// Engine rotates wallpapers: it downloads or picks a cached image, applies
// it to the compositor and propagates the derived palette.
// It holds no state between invocations besides the cache directory.
type Engine struct {
	logger     *zap.Logger
	cfg        domain.Config
	res        domain.ScreenResolution
	prober     domain.Prober
	fetcher    domain.Fetcher
	inspector  domain.Inspector
	cache      domain.Cache
	compositor domain.Compositor
	palette    domain.PaletteGenerator
	statusBar  domain.StatusBar
	terminal   domain.Terminal
	notifier   domain.Notifier
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a new rotation engine
func NewEngine(d Deps) *Engine {
	res := domain.ScreenResolution{Width: 1920, Height: 1080}
	if d.Resolution != nil {
		res = *d.Resolution
	}
	return &Engine{
		logger:     d.Logger,
		cfg:        d.Config,
		res:        res,
		prober:     d.Prober,
		fetcher:    d.Fetcher,
		inspector:  d.Inspector,
		cache:      d.Cache,
		compositor: d.Compositor,
		palette:    d.Palette,
		statusBar:  d.StatusBar,
		terminal:   d.Terminal,
		notifier:   d.Notifier,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// CheckConnectivity reports whether the network looks usable. It never fails.
func (e *Engine) CheckConnectivity(ctx context.Context) bool {
	ok := e.prober.Reachable(ctx)
	e.logger.Debug("Connectivity checked", zap.Bool("online", ok))
	return ok
}

// DownloadWallpaper tries every source in declared order and stores the
// first payload that is a valid image. Later sources are never contacted.
// Returns ErrNoSourceAvailable when all sources are exhausted.
func (e *Engine) DownloadWallpaper(ctx context.Context) (domain.WallpaperFile, error) {
	sources := e.cfg.GetSources()

	for i, tmpl := range sources {
		if err := ctx.Err(); err != nil {
			return domain.WallpaperFile{}, fmt.Errorf("%w: %v", domain.ErrNoSourceAvailable, err)
		}

		file, err := e.trySource(ctx, tmpl)
		if err == nil {
			e.logger.Info("Wallpaper downloaded",
				zap.Int("source", i),
				zap.String("path", file.Path))
			return file, nil
		}

		e.logger.Warn("Wallpaper source failed",
			zap.Int("source", i),
			zap.String("template", tmpl),
			zap.Error(err))
	}

	return domain.WallpaperFile{}, fmt.Errorf("%w: %d sources tried", domain.ErrNoSourceAvailable, len(sources))
}

// trySource fetches from one source, retrying transfer failures only.
// Content that fails inspection abandons the source immediately.
func (e *Engine) trySource(ctx context.Context, tmpl string) (domain.WallpaperFile, error) {
	tries := e.cfg.GetTries()
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= tries; attempt++ {
		url := fetcher.ExpandSource(tmpl, e.res, e.now().UnixNano())

		data, err := e.fetchOnce(ctx, url)
		if err != nil {
			lastErr = err
			e.logger.Debug("Download attempt failed",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Int("tries", tries),
				zap.Error(err))

			if attempt < tries {
				if err := e.sleep(ctx, e.cfg.GetRetryDelay()); err != nil {
					return domain.WallpaperFile{}, err
				}
			}
			continue
		}

		info, err := e.inspector.Inspect(data)
		if err != nil {
			return domain.WallpaperFile{}, fmt.Errorf("rejected content from %s: %w", url, err)
		}

		data, info, err = e.inspector.Prepare(data, info)
		if err != nil {
			return domain.WallpaperFile{}, fmt.Errorf("failed to prepare image: %w", err)
		}

		return e.cache.Save(data, processor.Extension(info.Format))
	}

	return domain.WallpaperFile{}, fmt.Errorf("%d attempts failed: %w", tries, lastErr)
}

func (e *Engine) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.GetTimeout())
	defer cancel()
	return e.fetcher.Fetch(ctx, url)
}

// ApplyWallpaper shows file on the compositor and refreshes dependent programs.
// Every step is best-effort: failures are logged and recorded in the result.
// Returns ErrFileMissing, with no side effects, if file is not on disk.
func (e *Engine) ApplyWallpaper(ctx context.Context, file domain.WallpaperFile) (domain.ApplyResult, error) {
	result := domain.ApplyResult{File: file}

	if _, err := os.Stat(file.Path); err != nil {
		return result, fmt.Errorf("%w: %s: %v", domain.ErrFileMissing, file.Path, err)
	}

	output := e.cfg.GetOutput()

	result.Steps = append(result.Steps,
		e.runStep(StepPreload, func() error { return e.compositor.Preload(ctx, file.Path) }),
		e.runStep(StepSet, func() error { return e.compositor.SetWallpaper(ctx, output, file.Path) }),
		e.runStep(StepUnload, func() error { return e.compositor.UnloadUnused(ctx) }),
		e.runStep(StepPalette, func() error { return e.palette.Generate(ctx, file.Path) }),
		e.runIfRunning(ctx, StepStatusBar, e.statusBar.Running, e.statusBar.Restart),
		e.runIfRunning(ctx, StepTerminal, e.terminal.Running, e.terminal.PushColors),
		e.runStep(StepNotify, func() error { return e.notifier.Notify(ctx, "Wallpaper changed", file.Name, file.Path) }),
	)

	if err := result.Err(); err != nil {
		e.logger.Warn("Wallpaper applied with warnings",
			zap.String("path", file.Path),
			zap.Strings("failed", result.Failed()))
	} else {
		e.logger.Info("Wallpaper applied", zap.String("path", file.Path))
	}

	return result, nil
}

func (e *Engine) runStep(name string, fn func() error) domain.StepResult {
	if err := fn(); err != nil {
		e.logger.Warn("Apply step failed", zap.String("step", name), zap.Error(err))
		return domain.StepResult{Name: name, Err: err}
	}
	return domain.StepResult{Name: name}
}

// runIfRunning calls action only when the target program is alive
func (e *Engine) runIfRunning(ctx context.Context, name string, running func(context.Context) (bool, error), action func(context.Context) error) domain.StepResult {
	alive, err := running(ctx)
	if err != nil {
		e.logger.Warn("Apply step failed", zap.String("step", name), zap.Error(err))
		return domain.StepResult{Name: name, Err: err}
	}
	if !alive {
		e.logger.Debug("Program not running, skipping", zap.String("step", name))
		return domain.StepResult{Name: name, Skipped: true}
	}
	return e.runStep(name, func() error { return action(ctx) })
}

// Rotate runs the fallback chain for mode exactly once.
// It never fails: exhausted fallbacks are logged and reported in the Outcome.
func (e *Engine) Rotate(ctx context.Context, mode domain.Mode) Outcome {
	e.logger.Info("Rotation started", zap.String("mode", string(mode)))

	switch mode {
	case domain.ModeInit:
		return e.rotateInit(ctx)
	case domain.ModeChange:
		return e.rotateChange(ctx)
	default:
		e.logger.Error("Unknown rotation mode", zap.String("mode", string(mode)))
		return Outcome{Mode: mode}
	}
}

func (e *Engine) rotateInit(ctx context.Context) Outcome {
	out := Outcome{Mode: domain.ModeInit}

	file, err := e.cache.Newest()
	if err == nil {
		return e.apply(ctx, out, file)
	}
	if !errors.Is(err, domain.ErrCacheEmpty) {
		e.logger.Warn("Failed to read wallpaper cache", zap.Error(err))
	}

	if !e.CheckConnectivity(ctx) {
		e.logger.Error("No cached wallpaper and no connectivity, nothing applied")
		return out
	}

	file, err = e.DownloadWallpaper(ctx)
	if err != nil {
		e.logger.Error("No cached wallpaper and download failed, nothing applied", zap.Error(err))
		return out
	}

	out.Downloaded = true
	return e.apply(ctx, out, file)
}

func (e *Engine) rotateChange(ctx context.Context) Outcome {
	out := Outcome{Mode: domain.ModeChange}

	if e.CheckConnectivity(ctx) {
		file, err := e.DownloadWallpaper(ctx)
		if err == nil {
			out.Downloaded = true
			out = e.apply(ctx, out, file)
			out.Pruned = e.prune()
			return out
		}
		e.logger.Warn("Download failed, falling back to cache", zap.Error(err))
	} else {
		e.logger.Warn("No connectivity, falling back to cache")
	}

	file, err := e.cache.Random()
	if err != nil {
		e.logger.Error("No wallpaper available, nothing applied", zap.Error(err))
		return out
	}

	return e.apply(ctx, out, file)
}

func (e *Engine) apply(ctx context.Context, out Outcome, file domain.WallpaperFile) Outcome {
	result, err := e.ApplyWallpaper(ctx, file)
	out.Result = result
	if err != nil {
		e.logger.Error("Failed to apply wallpaper", zap.Error(err))
		return out
	}
	out.Applied = true
	out.File = file
	return out
}

func (e *Engine) prune() int {
	removed, err := e.cache.Prune(e.cfg.GetKeep())
	if err != nil {
		e.logger.Warn("Retention cleanup incomplete", zap.Error(err))
	}
	if len(removed) > 0 {
		e.logger.Info("Old wallpapers removed",
			zap.Int("removed", len(removed)),
			zap.Int("keep", e.cfg.GetKeep()))
	}
	return len(removed)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
