// Package config loads the wallrot configuration from TOML, the environment
// and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const appName = "wallrot"

// Default configuration values.
const (
	DefaultTries            = 3
	DefaultTimeout          = 15 * time.Second
	DefaultRetryDelay       = 2 * time.Second
	DefaultKeep             = 10
	DefaultConnectivityHost = "1.1.1.1:443"
	DefaultProbeTimeout     = 3 * time.Second
	DefaultMaxBytes         = 25 * 1024 * 1024
	DefaultMinWidth         = 640
	DefaultMinHeight        = 360
	DefaultBackend          = "auto"
)

// DefaultSources are tried in order when no sources are configured.
var DefaultSources = []string{
	"https://picsum.photos/{width}/{height}?random={seed}",
	"https://source.unsplash.com/random/{width}x{height}/?wallpaper,landscape&sig={seed}",
	"https://loremflickr.com/{width}/{height}/landscape?lock={seed}",
}

// Duration wraps time.Duration so it can be written as "15s" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the complete wallrot configuration.
type Config struct {
	Dir          string             `toml:"dir"`
	Keep         int                `toml:"keep"`
	Download     DownloadConfig     `toml:"download"`
	Connectivity ConnectivityConfig `toml:"connectivity"`
	Image        ImageConfig        `toml:"image"`
	Compositor   CompositorConfig   `toml:"compositor"`
	Palette      PaletteConfig      `toml:"palette"`
	StatusBar    StatusBarConfig    `toml:"statusbar"`
	Terminal     TerminalConfig     `toml:"terminal"`
	Notify       NotifyConfig       `toml:"notify"`
}

// DownloadConfig holds the source list and retry policy.
type DownloadConfig struct {
	Sources    []string `toml:"sources"`
	Tries      int      `toml:"tries"`
	Timeout    Duration `toml:"timeout"`
	RetryDelay Duration `toml:"retry_delay"`
	MaxBytes   int64    `toml:"max_bytes"`
	UserAgent  string   `toml:"user_agent"`
}

// ConnectivityConfig holds the reachability probe target.
type ConnectivityConfig struct {
	Host    string   `toml:"host"` // host:port dialled over TCP
	Timeout Duration `toml:"timeout"`
}

// ImageConfig holds validation and preprocessing options.
type ImageConfig struct {
	MinWidth  int  `toml:"min_width"`
	MinHeight int  `toml:"min_height"`
	Fit       bool `toml:"fit"`    // Resize to the screen resolution before saving
	Width     int  `toml:"width"`  // 0 = detect
	Height    int  `toml:"height"` // 0 = detect
}

// CompositorConfig selects the wallpaper backend.
type CompositorConfig struct {
	Backend string `toml:"backend"` // auto, hyprpaper, swww
	Output  string `toml:"output"`  // Empty = all monitors
}

// PaletteConfig holds the palette generator command.
type PaletteConfig struct {
	Command []string `toml:"command"` // {path} is replaced with the image path
}

// StatusBarConfig describes the status bar process.
type StatusBarConfig struct {
	Process string   `toml:"process"`
	Launch  []string `toml:"launch"`
}

// TerminalConfig describes the terminal emulator process.
type TerminalConfig struct {
	Process    string `toml:"process"`
	ColorsFile string `toml:"colors_file"`
	Socket     string `toml:"socket"` // Optional kitty --to address
}

// NotifyConfig toggles desktop notifications.
type NotifyConfig struct {
	Enabled bool   `toml:"enabled"`
	Icon    string `toml:"icon"`
}

// Overrides are values supplied on the command line.
type Overrides struct {
	ConfigPath string
	Dir        string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dir:  filepath.Join(xdg.DataHome, appName, "wallpapers"),
		Keep: DefaultKeep,
		Download: DownloadConfig{
			Sources:    append([]string(nil), DefaultSources...),
			Tries:      DefaultTries,
			Timeout:    Duration(DefaultTimeout),
			RetryDelay: Duration(DefaultRetryDelay),
			MaxBytes:   DefaultMaxBytes,
			UserAgent:  "wallrot/1.0",
		},
		Connectivity: ConnectivityConfig{
			Host:    DefaultConnectivityHost,
			Timeout: Duration(DefaultProbeTimeout),
		},
		Image: ImageConfig{
			MinWidth:  DefaultMinWidth,
			MinHeight: DefaultMinHeight,
		},
		Compositor: CompositorConfig{
			Backend: DefaultBackend,
		},
		Palette: PaletteConfig{
			Command: []string{"wal", "-i", "{path}", "-n", "-q"},
		},
		StatusBar: StatusBarConfig{
			Process: "waybar",
			Launch:  []string{"waybar"},
		},
		Terminal: TerminalConfig{
			Process:    "kitty",
			ColorsFile: filepath.Join(xdg.CacheHome, "wal", "colors-kitty.conf"),
		},
		Notify: NotifyConfig{
			Enabled: true,
			Icon:    "preferences-desktop-wallpaper",
		},
	}
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides values from WALLROT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("WALLROT_DIR"); v != "" {
		c.Dir = v
	}
	if v := os.Getenv("WALLROT_OUTPUT"); v != "" {
		c.Compositor.Output = v
	}
	if v := os.Getenv("WALLROT_BACKEND"); v != "" {
		c.Compositor.Backend = v
	}
	if v := os.Getenv("WALLROT_SOURCES"); v != "" {
		c.Download.Sources = strings.Fields(v)
	}
	if v := os.Getenv("WALLROT_TRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WALLROT_TRIES: %w", err)
		}
		c.Download.Tries = n
	}
	if v := os.Getenv("WALLROT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WALLROT_TIMEOUT: %w", err)
		}
		c.Download.Timeout = Duration(d)
	}
	if v := os.Getenv("WALLROT_KEEP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WALLROT_KEEP: %w", err)
		}
		c.Keep = n
	}
	return nil
}

// Validate checks the configuration and expands paths.
func (c *Config) Validate() error {
	c.Dir = expandPath(c.Dir)
	c.Terminal.ColorsFile = expandPath(c.Terminal.ColorsFile)

	if c.Dir == "" {
		return errors.New("wallpaper directory must be set")
	}
	if c.Keep < 1 {
		return fmt.Errorf("keep must be at least 1, got %d", c.Keep)
	}
	if c.Download.Tries < 1 {
		return fmt.Errorf("download.tries must be at least 1, got %d", c.Download.Tries)
	}
	if c.Download.Timeout <= 0 {
		return errors.New("download.timeout must be positive")
	}
	switch c.Compositor.Backend {
	case "auto", "hyprpaper", "swww":
	default:
		return fmt.Errorf("unknown compositor backend %q", c.Compositor.Backend)
	}
	return nil
}

// NewAppConfig loads, overrides and validates the configuration
func NewAppConfig(logger *zap.Logger, ov Overrides) (*Config, error) {
	cfg, err := LoadConfig(ov.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if ov.Dir != "" {
		cfg.Dir = ov.Dir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		zap.String("dir", cfg.Dir),
		zap.Int("sources", len(cfg.Download.Sources)),
		zap.Int("tries", cfg.Download.Tries),
		zap.Duration("timeout", time.Duration(cfg.Download.Timeout)),
		zap.Int("keep", cfg.Keep),
		zap.String("backend", cfg.Compositor.Backend))

	return cfg, nil
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// GetSources returns the ordered wallpaper URL templates
func (c *Config) GetSources() []string { return c.Download.Sources }

// GetTries returns the number of attempts per source
func (c *Config) GetTries() int { return c.Download.Tries }

// GetTimeout returns the timeout of a single attempt
func (c *Config) GetTimeout() time.Duration { return time.Duration(c.Download.Timeout) }

// GetRetryDelay returns the pause between attempts on the same source
func (c *Config) GetRetryDelay() time.Duration { return time.Duration(c.Download.RetryDelay) }

// GetKeep returns the retention count
func (c *Config) GetKeep() int { return c.Keep }

// GetOutput returns the monitor identifier
func (c *Config) GetOutput() string { return c.Compositor.Output }
