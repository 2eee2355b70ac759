// Package cache stores wallpaper images in a single directory.
package cache

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/genricoloni/wallrot/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	filePrefix    = "wallpaper-"
	partialSuffix = ".partial"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// DirCache is a directory-backed wallpaper cache.
// Files are named wallpaper-<ULID>.<ext> so the creation time is part of the name.
type DirCache struct {
	logger  *zap.Logger
	dir     string
	now     func() time.Time
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	rng     *rand.Rand
}

// NewDirCache creates a cache rooted at dir
func NewDirCache(logger *zap.Logger, dir string) *DirCache {
	return &DirCache{
		logger:  logger,
		dir:     dir,
		now:     time.Now,
		entropy: ulid.Monotonic(crand.Reader, 0),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Dir returns the cache directory
func (c *DirCache) Dir() string {
	return c.dir
}

// List returns all cached wallpapers, newest first.
// Ties on creation time are broken by filename, the greater name first.
func (c *DirCache) List() ([]domain.WallpaperFile, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wallpaper directory: %w", err)
	}

	files := make([]domain.WallpaperFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isImageName(entry.Name()) {
			continue
		}

		created, ok := createdFromName(entry.Name())
		if !ok {
			info, err := entry.Info()
			if err != nil {
				// Removed between ReadDir and Info
				continue
			}
			created = info.ModTime()
		}

		files = append(files, domain.WallpaperFile{
			Path:      filepath.Join(c.dir, entry.Name()),
			Name:      entry.Name(),
			CreatedAt: created,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.After(files[j].CreatedAt)
		}
		return files[i].Name > files[j].Name
	})

	return files, nil
}

// Newest returns the most recently created wallpaper
func (c *DirCache) Newest() (domain.WallpaperFile, error) {
	files, err := c.List()
	if err != nil {
		return domain.WallpaperFile{}, err
	}
	if len(files) == 0 {
		return domain.WallpaperFile{}, domain.ErrCacheEmpty
	}
	return files[0], nil
}

// Random returns a uniformly chosen wallpaper
func (c *DirCache) Random() (domain.WallpaperFile, error) {
	files, err := c.List()
	if err != nil {
		return domain.WallpaperFile{}, err
	}
	if len(files) == 0 {
		return domain.WallpaperFile{}, domain.ErrCacheEmpty
	}

	c.mu.Lock()
	idx := c.rng.Intn(len(files))
	c.mu.Unlock()

	return files[idx], nil
}

// Save writes data to a new uniquely named file.
// The data goes to a .partial file first which is renamed on success and
// removed on any failure, so no truncated image is ever listed.
func (c *DirCache) Save(data []byte, ext string) (domain.WallpaperFile, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return domain.WallpaperFile{}, fmt.Errorf("failed to create wallpaper directory: %w", err)
	}

	ext = normalizeExt(ext)
	now := c.now()

	c.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), c.entropy)
	c.mu.Unlock()
	if err != nil {
		return domain.WallpaperFile{}, fmt.Errorf("failed to generate file name: %w", err)
	}

	name := filePrefix + id.String() + ext
	finalPath := filepath.Join(c.dir, name)
	tmpPath := finalPath + partialSuffix

	if err := writeFileSync(tmpPath, data); err != nil {
		_ = os.Remove(tmpPath)
		return domain.WallpaperFile{}, fmt.Errorf("failed to write wallpaper: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return domain.WallpaperFile{}, fmt.Errorf("failed to finalize wallpaper: %w", err)
	}

	c.logger.Debug("Wallpaper saved",
		zap.String("path", finalPath),
		zap.String("size", humanize.Bytes(uint64(len(data)))))

	return domain.WallpaperFile{
		Path:      finalPath,
		Name:      name,
		CreatedAt: ulid.Time(id.Time()),
	}, nil
}

// Prune deletes all but the keep newest wallpapers and returns the removed files
func (c *DirCache) Prune(keep int) ([]domain.WallpaperFile, error) {
	if keep < 0 {
		keep = 0
	}

	files, err := c.List()
	if err != nil {
		return nil, err
	}
	if len(files) <= keep {
		return nil, nil
	}

	var removed []domain.WallpaperFile
	var errs []error
	for _, f := range files[keep:] {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, f)
		c.logger.Debug("Pruned wallpaper", zap.String("path", f.Path))
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("failed to prune %d wallpapers: %w", len(errs), errors.Join(errs...))
	}
	return removed, nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isImageName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// createdFromName extracts the ULID timestamp from wallpaper-<ULID>.<ext>
func createdFromName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) {
		return time.Time{}, false
	}
	base := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), filepath.Ext(name))
	id, err := ulid.ParseStrict(base)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()), true
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == ".jpeg" {
		return ".jpg"
	}
	return ext
}
