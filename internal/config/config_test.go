package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10, cfg.Keep)
	assert.Equal(t, 3, cfg.Download.Tries)
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
	assert.Equal(t, DefaultSources, cfg.GetSources())
	assert.Equal(t, "auto", cfg.Compositor.Backend)
	assert.Equal(t, "waybar", cfg.StatusBar.Process)
	assert.Equal(t, "kitty", cfg.Terminal.Process)
	assert.NotEmpty(t, cfg.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Keep, cfg.Keep)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
dir = "/tmp/walls"
keep = 5

[download]
sources = ["https://a.example/{width}x{height}", "https://b.example/"]
tries = 5
timeout = "20s"
retry_delay = "0s"

[compositor]
backend = "swww"
output = "DP-1"

[notify]
enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/walls", cfg.Dir)
	assert.Equal(t, 5, cfg.GetKeep())
	assert.Equal(t, []string{"https://a.example/{width}x{height}", "https://b.example/"}, cfg.GetSources())
	assert.Equal(t, 5, cfg.GetTries())
	assert.Equal(t, 20*time.Second, cfg.GetTimeout())
	assert.Equal(t, time.Duration(0), cfg.GetRetryDelay())
	assert.Equal(t, "swww", cfg.Compositor.Backend)
	assert.Equal(t, "DP-1", cfg.GetOutput())
	assert.False(t, cfg.Notify.Enabled)
	// Untouched sections keep their defaults
	assert.Equal(t, "waybar", cfg.StatusBar.Process)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("keep = [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("WALLROT_DIR", "/env/dir")
	t.Setenv("WALLROT_TRIES", "4")
	t.Setenv("WALLROT_TIMEOUT", "10s")
	t.Setenv("WALLROT_KEEP", "7")
	t.Setenv("WALLROT_SOURCES", "https://x.example https://y.example")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/env/dir", cfg.Dir)
	assert.Equal(t, 4, cfg.GetTries())
	assert.Equal(t, 10*time.Second, cfg.GetTimeout())
	assert.Equal(t, 7, cfg.GetKeep())
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.GetSources())
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	t.Setenv("WALLROT_TRIES", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero keep", mutate: func(c *Config) { c.Keep = 0 }, wantErr: true},
		{name: "zero tries", mutate: func(c *Config) { c.Download.Tries = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Download.Timeout = 0 }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Compositor.Backend = "feh" }, wantErr: true},
		{name: "empty dir", mutate: func(c *Config) { c.Dir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Dir = "~/Pictures/walls"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(home, "Pictures/walls"), cfg.Dir)
}

func TestNewAppConfig_DirOverride(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewAppConfig(zap.NewNop(), Overrides{
		ConfigPath: filepath.Join(dir, "missing.toml"),
		Dir:        filepath.Join(dir, "walls"),
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "walls"), cfg.Dir)
}
