package gitenv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo-mofox/webui/internal/domain"
	"github.com/neo-mofox/webui/internal/settings"
)

// settingsKey holds the git environment state in the settings store.
const settingsKey = "git_env"

// State is the persisted git environment: which executable to use and what
// we know about it.
type State struct {
	Path         string  `json:"path"`
	Version      string  `json:"version"`
	AutoDetected bool    `json:"auto_detected"`
	UpdatedAt    float64 `json:"updated_at"`
}

// Status is the full environment report for the UI.
type Status struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	IsRepo    bool   `json:"is_repo"`
	RepoDir   string `json:"repo_dir"`
}

// Manager keeps the detected git environment in the settings store and
// answers availability questions for the updater.
type Manager struct {
	store    *settings.Store
	detector *Detector
	repoDir  string
}

// NewManager creates a git environment manager.
func NewManager(store *settings.Store, repoDir string) *Manager {
	return &Manager{store: store, detector: NewDetector(repoDir), repoDir: repoDir}
}

// GitPath returns the configured git executable, auto-detecting on first use.
func (m *Manager) GitPath(ctx context.Context) (string, error) {
	var state State
	err := m.store.Get(settingsKey, &state)
	if err == nil && state.Path != "" {
		return state.Path, nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	state, err = m.AutoDetect(ctx)
	if err != nil {
		return "", err
	}
	return state.Path, nil
}

// Status reports the current environment.
func (m *Manager) Status(ctx context.Context) Status {
	status := Status{RepoDir: m.repoDir}

	path, err := m.GitPath(ctx)
	if err != nil {
		return status
	}
	version, err := Version(ctx, path)
	if err != nil {
		return status
	}

	status.Available = true
	status.Path = path
	status.Version = version
	status.IsRepo = IsRepo(ctx, path, m.repoDir)
	return status
}

// SetPath configures an explicit git executable after validating it works.
func (m *Manager) SetPath(ctx context.Context, path string) (State, error) {
	version, err := Version(ctx, path)
	if err != nil {
		return State{}, fmt.Errorf("invalid git path: %w", err)
	}

	state := State{
		Path:      path,
		Version:   version,
		UpdatedAt: float64(time.Now().Unix()),
	}
	if err := m.store.Set(settingsKey, state); err != nil {
		return State{}, err
	}
	slog.Info("Git path configured", "path", path, "version", version)
	return state, nil
}

// AutoDetect searches for git and persists the result.
func (m *Manager) AutoDetect(ctx context.Context) (State, error) {
	path, err := m.detector.Detect(ctx)
	if err != nil {
		return State{}, err
	}
	version, err := Version(ctx, path)
	if err != nil {
		return State{}, err
	}

	state := State{
		Path:         path,
		Version:      version,
		AutoDetected: true,
		UpdatedAt:    float64(time.Now().Unix()),
	}
	if err := m.store.Set(settingsKey, state); err != nil {
		return State{}, err
	}
	slog.Info("Git auto-detected", "path", path, "version", version)
	return state, nil
}
