package settings

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/neo-mofox/webui/internal/domain"
)

// MaxWallpaperSize caps wallpaper uploads.
const MaxWallpaperSize = 10 << 20

var wallpaperTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Wallpaper stores at most one custom dashboard wallpaper image.
type Wallpaper struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewWallpaper creates the wallpaper store rooted at dir.
func NewWallpaper(fs afero.Fs, dir string) *Wallpaper {
	return &Wallpaper{fs: fs, dir: dir}
}

// Save stores a new wallpaper, replacing any previous one. The extension must
// be a known image type and the data must fit the size cap.
func (w *Wallpaper) Save(filename string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := wallpaperTypes[ext]; !ok {
		return fmt.Errorf("unsupported image type: %q", ext)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty upload")
	}
	if len(data) > MaxWallpaperSize {
		return fmt.Errorf("image too large: %d bytes (max %d)", len(data), MaxWallpaperSize)
	}

	if err := w.removeLocked(); err != nil {
		return err
	}
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create wallpaper dir: %w", err)
	}
	path := filepath.Join(w.dir, "wallpaper"+ext)
	if err := afero.WriteFile(w.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write wallpaper: %w", err)
	}
	return nil
}

// Load returns the current wallpaper bytes and content type.
func (w *Wallpaper) Load() ([]byte, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	path, contentType, err := w.findLocked()
	if err != nil {
		return nil, "", err
	}
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read wallpaper: %w", err)
	}
	return data, contentType, nil
}

// Delete removes the current wallpaper, if any.
func (w *Wallpaper) Delete() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.removeLocked()
}

func (w *Wallpaper) findLocked() (string, string, error) {
	for ext, contentType := range wallpaperTypes {
		path := filepath.Join(w.dir, "wallpaper"+ext)
		if exists, _ := afero.Exists(w.fs, path); exists {
			return path, contentType, nil
		}
	}
	return "", "", domain.ErrNotFound
}

func (w *Wallpaper) removeLocked() error {
	for ext := range wallpaperTypes {
		path := filepath.Join(w.dir, "wallpaper"+ext)
		if exists, _ := afero.Exists(w.fs, path); exists {
			if err := w.fs.Remove(path); err != nil {
				return fmt.Errorf("failed to remove wallpaper: %w", err)
			}
		}
	}
	return nil
}
