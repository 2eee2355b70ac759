package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/wallrot/internal/domain Fetcher,Prober,Inspector,Cache,Compositor,PaletteGenerator,StatusBar,Terminal,Notifier

// Fetcher defines the interface for retrieving remote wallpapers
type Fetcher interface {
	// Fetch downloads raw bytes from a URL
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Prober checks network reachability
type Prober interface {
	// Reachable reports whether the probe target answered. It never fails.
	Reachable(ctx context.Context) bool
}

// Inspector validates downloaded data by content
type Inspector interface {
	// Inspect decodes the image header and returns its properties.
	// Returns ErrNotAnImage if the payload is not a supported image.
	Inspect(data []byte) (ImageInfo, error)

	// Prepare optionally transforms a validated image before it is stored
	Prepare(data []byte, info ImageInfo) ([]byte, ImageInfo, error)
}

// Cache stores wallpaper images in a single directory
type Cache interface {
	// List returns all cached wallpapers, newest first
	List() ([]WallpaperFile, error)

	// Newest returns the most recently created wallpaper or ErrCacheEmpty
	Newest() (WallpaperFile, error)

	// Random returns a uniformly chosen wallpaper or ErrCacheEmpty
	Random() (WallpaperFile, error)

	// Save atomically writes an image under a new unique name
	Save(data []byte, ext string) (WallpaperFile, error)

	// Prune deletes all but the keep newest wallpapers
	Prune(keep int) ([]WallpaperFile, error)
}

// Compositor controls the wallpaper daemon of the display compositor
type Compositor interface {
	Preload(ctx context.Context, path string) error
	SetWallpaper(ctx context.Context, output, path string) error
	UnloadUnused(ctx context.Context) error
}

// PaletteGenerator derives a colour scheme from an image.
// The result is written to the tool's own cache location.
type PaletteGenerator interface {
	Generate(ctx context.Context, path string) error
}

// StatusBar controls the status bar process
type StatusBar interface {
	Running(ctx context.Context) (bool, error)
	// Restart terminates the running bar and relaunches it detached
	Restart(ctx context.Context) error
}

// Terminal controls the running terminal emulator
type Terminal interface {
	Running(ctx context.Context) (bool, error)
	// PushColors sends the refreshed palette through the live control channel
	PushColors(ctx context.Context) error
}

// Notifier shows desktop notifications
type Notifier interface {
	Notify(ctx context.Context, summary, body, icon string) error
}

// Config defines the rotation policy values consumed by the engine
type Config interface {
	// GetSources returns the ordered wallpaper URL templates
	GetSources() []string
	// GetTries returns the number of attempts per source
	GetTries() int
	// GetTimeout returns the timeout of a single attempt
	GetTimeout() time.Duration
	// GetRetryDelay returns the pause between attempts on the same source
	GetRetryDelay() time.Duration
	// GetKeep returns how many wallpapers survive retention cleanup
	GetKeep() int
	// GetOutput returns the monitor identifier, empty for all outputs
	GetOutput() string
}
