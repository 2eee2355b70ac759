package domain

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

var (
	// ErrNoSourceAvailable is returned when every wallpaper source failed or
	// returned data that is not an image
	ErrNoSourceAvailable = errors.New("no wallpaper source available")
	// ErrFileMissing is returned when applying a wallpaper that is not on disk
	ErrFileMissing = errors.New("wallpaper file missing")
	// ErrInvalidMode is returned for an unknown rotation mode
	ErrInvalidMode = errors.New("invalid mode")
	// ErrNotAnImage is returned when downloaded content fails inspection
	ErrNotAnImage = errors.New("content is not an image")
	// ErrCacheEmpty is returned when the wallpaper directory holds no images
	ErrCacheEmpty = errors.New("wallpaper cache is empty")
)

// Mode selects the rotation strategy
type Mode string

const (
	// ModeInit reuses the newest cached wallpaper (session start)
	ModeInit Mode = "init"
	// ModeChange always tries to download a new wallpaper
	ModeChange Mode = "change"
)

// ParseMode converts a command line argument into a Mode.
// An empty argument defaults to ModeChange.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeChange, nil
	case ModeInit, ModeChange:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMode, s, ModeInit, ModeChange)
	}
}

// WallpaperFile is an image stored in the wallpaper cache directory
type WallpaperFile struct {
	// Path is the absolute path of the image
	Path string
	// Name is the base name of the file
	Name string
	// CreatedAt is the creation time embedded in the filename, or the
	// modification time for files not created by wallrot
	CreatedAt time.Time
}

// ImageInfo describes an inspected image payload
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// ScreenResolution holds the display dimensions
type ScreenResolution struct {
	Width  int
	Height int
}

// StepResult records the outcome of one best-effort apply step
type StepResult struct {
	Name    string
	Skipped bool
	Err     error
}

// ApplyResult collects the outcome of every step of an apply operation
type ApplyResult struct {
	File  WallpaperFile
	Steps []StepResult
}

// Err combines the errors of all failed steps, nil if every step succeeded
func (r ApplyResult) Err() error {
	var err error
	for _, s := range r.Steps {
		if s.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", s.Name, s.Err))
		}
	}
	return err
}

// Failed returns the names of the steps that failed
func (r ApplyResult) Failed() []string {
	var names []string
	for _, s := range r.Steps {
		if s.Err != nil {
			names = append(names, s.Name)
		}
	}
	return names
}
