package settings

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/neo-mofox/webui/internal/domain"
)

// Keys are restricted so each one maps safely to a file name.
var keyRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// Store keeps small JSON settings blobs, one file per key.
type Store struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

// NewStore creates a settings store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value stored under key.
func (s *Store) Get(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid settings key: %q", key)
	}
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		return domain.ErrNotFound
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupt settings value %q: %w", key, err)
	}
	return nil
}

// Set writes the value under key, replacing any previous one.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid settings key: %q", key)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings value: %w", err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings value: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid settings key: %q", key)
	}
	if exists, _ := afero.Exists(s.fs, s.path(key)); !exists {
		return nil
	}
	return s.fs.Remove(s.path(key))
}

// Keys lists the stored setting keys, sorted.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat settings dir: %w", err)
	}
	if !exists {
		return []string{}, nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(fi.Name(), ".json"))
	}
	return keys, nil
}
