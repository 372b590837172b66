package confedit

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/neo-mofox/webui/internal/domain"
)

// maxBackups bounds the per-file backup history; the oldest are pruned on
// each save.
const maxBackups = 20

const backupTimeLayout = "20060102-150405"

// BackupInfo describes one saved backup of a config file.
type BackupInfo struct {
	Name      string  `json:"name"`
	Size      int64   `json:"size"`
	CreatedAt float64 `json:"created_at"`
}

// FileStore edits one TOML config file with validation and timestamped
// backups. Writes are serialized; every successful save first snapshots the
// previous content.
type FileStore struct {
	mu        sync.Mutex
	fs        afero.Fs
	path      string
	backupDir string
}

// NewFileStore creates a store for the TOML file at path, keeping backups
// under backupDir.
func NewFileStore(fs afero.Fs, path, backupDir string) *FileStore {
	return &FileStore{fs: fs, path: path, backupDir: backupDir}
}

// Path returns the config file path.
func (s *FileStore) Path() string { return s.path }

// Raw returns the file's current text.
func (s *FileStore) Raw() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawLocked()
}

func (s *FileStore) rawLocked() (string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return "", domain.ErrNotFound
	}
	return string(data), nil
}

// Load parses the file into a key-value map.
func (s *FileStore) Load() (map[string]any, error) {
	raw, err := s.Raw()
	if err != nil {
		return nil, err
	}
	var parsed map[string]any
	if err := toml.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("config file is not valid TOML: %w", err)
	}
	if parsed == nil {
		parsed = map[string]any{}
	}
	return parsed, nil
}

// SaveRaw validates the content as TOML, backs the current file up, then
// writes the new content.
func (s *FileStore) SaveRaw(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveRawLocked(content)
}

func (s *FileStore) saveRawLocked(content string) error {
	var check map[string]any
	if err := toml.Unmarshal([]byte(content), &check); err != nil {
		return fmt.Errorf("refusing to save invalid TOML: %w", err)
	}

	if err := s.backupLocked(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge overlays updates onto the parsed config and re-renders the file.
// Nested maps merge recursively; scalar values replace.
func (s *FileStore) Merge(updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.rawLocked()
	if err != nil {
		return err
	}
	var current map[string]any
	if err := toml.Unmarshal([]byte(raw), &current); err != nil {
		return fmt.Errorf("config file is not valid TOML: %w", err)
	}
	if current == nil {
		current = map[string]any{}
	}

	mergeMaps(current, updates)

	rendered, err := toml.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to render merged config: %w", err)
	}
	return s.saveRawLocked(string(rendered))
}

func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		if srcMap, ok := value.(map[string]any); ok {
			if dstMap, ok := dst[key].(map[string]any); ok {
				mergeMaps(dstMap, srcMap)
				continue
			}
		}
		dst[key] = value
	}
}

// Backups lists this file's backups, newest first.
func (s *FileStore) Backups() ([]BackupInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backupsLocked()
}

func (s *FileStore) backupsLocked() ([]BackupInfo, error) {
	exists, err := afero.DirExists(s.fs, s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup dir: %w", err)
	}
	if !exists {
		return []BackupInfo{}, nil
	}

	entries, err := afero.ReadDir(s.fs, s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup dir: %w", err)
	}

	prefix := filepath.Base(s.path) + "."
	backups := make([]BackupInfo, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasPrefix(fi.Name(), prefix) || !strings.HasSuffix(fi.Name(), ".bak") {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:      fi.Name(),
			Size:      fi.Size(),
			CreatedAt: float64(fi.ModTime().Unix()),
		})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

// backupLocked snapshots the current file, if any, and prunes old backups.
func (s *FileStore) backupLocked() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil // nothing to back up yet
	}
	if err := s.fs.MkdirAll(s.backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup dir: %w", err)
	}

	name := fmt.Sprintf("%s.%s.bak", filepath.Base(s.path), time.Now().Format(backupTimeLayout))
	if err := afero.WriteFile(s.fs, filepath.Join(s.backupDir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	backups, err := s.backupsLocked()
	if err != nil {
		return err
	}
	for i := maxBackups; i < len(backups); i++ {
		_ = s.fs.Remove(filepath.Join(s.backupDir, backups[i].Name))
	}
	return nil
}

// Restore replaces the config file with a backup's content. The current file
// is backed up first, so a restore is itself reversible.
func (s *FileStore) Restore(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name != filepath.Base(name) || !strings.HasSuffix(name, ".bak") {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	data, err := afero.ReadFile(s.fs, filepath.Join(s.backupDir, name))
	if err != nil {
		return domain.ErrNotFound
	}
	return s.saveRawLocked(string(data))
}
