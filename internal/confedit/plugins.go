package confedit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/neo-mofox/webui/internal/domain"
)

// PluginInfo describes one plugin directory and its editable config files.
type PluginInfo struct {
	Name  string   `json:"name"`
	Files []string `json:"files"`
}

// PluginStore exposes the TOML config files of installed plugins, one
// FileStore per file. Backups live next to the plugin's configs.
type PluginStore struct {
	fs  afero.Fs
	dir string
}

// NewPluginStore creates a store over the plugin directory.
func NewPluginStore(fs afero.Fs, dir string) *PluginStore {
	return &PluginStore{fs: fs, dir: dir}
}

// Plugins lists plugins that carry at least one TOML config file.
func (p *PluginStore) Plugins() ([]PluginInfo, error) {
	exists, err := afero.DirExists(p.fs, p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plugin dir: %w", err)
	}
	if !exists {
		return []PluginInfo{}, nil
	}

	entries, err := afero.ReadDir(p.fs, p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin dir: %w", err)
	}

	plugins := make([]PluginInfo, 0, len(entries))
	for _, fi := range entries {
		if !fi.IsDir() {
			continue
		}
		files, err := p.Files(fi.Name())
		if err != nil || len(files) == 0 {
			continue
		}
		plugins = append(plugins, PluginInfo{Name: fi.Name(), Files: files})
	}
	return plugins, nil
}

// Files lists a plugin's TOML config files.
func (p *PluginStore) Files(plugin string) ([]string, error) {
	if err := validName(plugin); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(p.fs, filepath.Join(p.dir, plugin))
	if err != nil {
		return nil, domain.ErrNotFound
	}

	files := make([]string, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".toml") {
			continue
		}
		files = append(files, fi.Name())
	}
	return files, nil
}

// Store returns a FileStore for one plugin config file.
func (p *PluginStore) Store(plugin, file string) (*FileStore, error) {
	if err := validName(plugin); err != nil {
		return nil, err
	}
	if err := validName(file); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(file, ".toml") {
		return nil, fmt.Errorf("not a TOML config file: %q", file)
	}

	pluginDir := filepath.Join(p.dir, plugin)
	exists, err := afero.Exists(p.fs, filepath.Join(pluginDir, file))
	if err != nil || !exists {
		return nil, domain.ErrNotFound
	}
	return NewFileStore(p.fs, filepath.Join(pluginDir, file), filepath.Join(pluginDir, "backups")), nil
}

// validName rejects path segments that could escape the plugin directory.
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid name: %q", name)
	}
	return nil
}
