package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/genricoloni/wallrot/internal/cache"
	"github.com/genricoloni/wallrot/internal/config"
	"github.com/genricoloni/wallrot/internal/domain"
	"github.com/genricoloni/wallrot/internal/engine"
	"github.com/genricoloni/wallrot/internal/executor"
	"github.com/genricoloni/wallrot/internal/fetcher"
	"github.com/genricoloni/wallrot/internal/monitor"
	"github.com/genricoloni/wallrot/internal/notify"
	"github.com/genricoloni/wallrot/internal/processor"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// options holds the command line flags
type options struct {
	configPath string
	dir        string
	debug      bool
}

// runFunc performs one rotation; swapped in tests
type runFunc func(ctx context.Context, opts options, mode domain.Mode) error

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(run).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

// newRootCmd builds the wallrot command. The mode argument is validated
// before run is called, so a usage error has no side effects.
func newRootCmd(fn runFunc) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "wallrot [init|change]",
		Short: "Rotate the desktop wallpaper",
		Long: `wallrot downloads a fresh wallpaper (or picks one from its cache),
applies it through hyprpaper or swww and propagates the derived colour
palette to the status bar and terminal.

  init    show the newest cached wallpaper, downloading one only if the cache is empty
  change  download and apply a new wallpaper, falling back to a random cached one (default)`,
		ValidArgs: []string{string(domain.ModeInit), string(domain.ModeChange)},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("%w: expected at most one argument, got %d", domain.ErrInvalidMode, len(args))
			}
			_, err := domain.ParseMode(firstArg(args))
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Past argument validation every failure is a runtime one
			cmd.SilenceUsage = true
			mode, _ := domain.ParseMode(firstArg(args))
			return fn(cmd.Context(), opts, mode)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/wallrot/config.toml)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "wallpaper cache directory")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// run builds the application graph and performs a single rotation.
// Rotation problems are logged and never turn into a failing exit status.
func run(ctx context.Context, opts options, mode domain.Mode) error {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var rotator *engine.Engine
	app := fx.New(
		AppOptions(logger, config.Overrides{ConfigPath: opts.configPath, Dir: opts.dir}),
		fx.Populate(&rotator),
	)
	if err := app.Err(); err != nil {
		logger.Error("Failed to initialize", zap.Error(err))
		return err
	}

	if err := app.Start(ctx); err != nil {
		logger.Error("Failed to start", zap.Error(err))
		return err
	}

	out := rotator.Rotate(ctx, mode)
	logger.Info("Rotation finished",
		zap.String("mode", string(out.Mode)),
		zap.Bool("applied", out.Applied),
		zap.Bool("downloaded", out.Downloaded),
		zap.String("file", out.File.Path),
		zap.Int("pruned", out.Pruned))

	if err := app.Stop(context.Background()); err != nil {
		logger.Warn("Shutdown incomplete", zap.Error(err))
	}
	return nil
}

// AppOptions wires every component of the rotator
func AppOptions(logger *zap.Logger, ov config.Overrides) fx.Option {
	return fx.Options(
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Supply(logger, ov),

		fx.Provide(
			config.NewAppConfig,
			func(cfg *config.Config) domain.Config { return cfg },
			newResolution,

			newFetcher,
			newProber,
			newInspector,
			newCache,

			fx.Annotate(executor.NewExecRunner, fx.As(new(executor.Runner))),
			fx.Annotate(executor.NewSystemProcessTable, fx.As(new(executor.ProcessTable))),
			newCompositor,
			newPalette,
			newStatusBar,
			newTerminal,
			newNotifier,

			engine.NewEngine,
		),
	)
}

// newLogger creates a new zap logger instance
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newResolution(logger *zap.Logger, cfg *config.Config) *domain.ScreenResolution {
	return monitor.NewScreenResolution(logger, cfg.Image.Width, cfg.Image.Height)
}

func newFetcher(logger *zap.Logger, cfg *config.Config) domain.Fetcher {
	return fetcher.NewHTTPFetcher(logger, cfg.Download.MaxBytes, cfg.Download.UserAgent)
}

func newProber(logger *zap.Logger, cfg *config.Config) domain.Prober {
	return fetcher.NewTCPProber(logger, cfg.Connectivity.Host, time.Duration(cfg.Connectivity.Timeout))
}

func newInspector(logger *zap.Logger, res *domain.ScreenResolution, cfg *config.Config) domain.Inspector {
	return processor.NewImageInspector(logger, res, processor.InspectorConfig{
		MinWidth:  cfg.Image.MinWidth,
		MinHeight: cfg.Image.MinHeight,
		Fit:       cfg.Image.Fit,
	})
}

func newCache(logger *zap.Logger, cfg *config.Config) domain.Cache {
	return cache.NewDirCache(logger, cfg.Dir)
}

func newCompositor(logger *zap.Logger, runner executor.Runner, cfg *config.Config) (domain.Compositor, error) {
	return executor.NewCompositor(logger, runner, cfg.Compositor.Backend)
}

func newPalette(logger *zap.Logger, runner executor.Runner, cfg *config.Config) domain.PaletteGenerator {
	return executor.NewPywalGenerator(logger, runner, cfg.Palette.Command)
}

func newStatusBar(logger *zap.Logger, runner executor.Runner, procs executor.ProcessTable, cfg *config.Config) domain.StatusBar {
	return executor.NewWaybarController(logger, runner, procs, cfg.StatusBar.Process, cfg.StatusBar.Launch)
}

func newTerminal(logger *zap.Logger, runner executor.Runner, procs executor.ProcessTable, cfg *config.Config) domain.Terminal {
	return executor.NewKittyController(logger, runner, procs, cfg.Terminal.Process, cfg.Terminal.ColorsFile, cfg.Terminal.Socket)
}

func newNotifier(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) domain.Notifier {
	n := notify.NewDesktopNotifier(logger, cfg.Notify.Enabled, cfg.Notify.Icon)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return n.Close()
		},
	})
	return n
}
