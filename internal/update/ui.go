package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/neo-mofox/webui/internal/domain"
	"github.com/neo-mofox/webui/internal/gitenv"
	"github.com/neo-mofox/webui/internal/settings"
)

// uiVersionsKey records applied UI versions in the settings store.
const uiVersionsKey = "ui_versions"

// AppliedVersion is one entry in the UI version history.
type AppliedVersion struct {
	Version   string  `json:"version"`
	AppliedAt float64 `json:"applied_at"`
}

type uiVersionState struct {
	Current string           `json:"current"`
	History []AppliedVersion `json:"history"`
}

// UIManager updates the bundled web UI: the dist directory is a shallow
// checkout of the UI repository, pinned to a release tag.
type UIManager struct {
	env       *gitenv.Manager
	store     *settings.Store
	distDir   string
	remoteURL string
	timeout   time.Duration
}

// NewUIManager creates a UI asset updater.
func NewUIManager(env *gitenv.Manager, store *settings.Store, distDir, remoteURL string, timeout time.Duration) *UIManager {
	return &UIManager{env: env, store: store, distDir: distDir, remoteURL: remoteURL, timeout: timeout}
}

func (m *UIManager) state() uiVersionState {
	var state uiVersionState
	if err := m.store.Get(uiVersionsKey, &state); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.Warn("Failed to read UI version history", "error", err)
	}
	return state
}

// Check compares the recorded version against the newest remote tag.
func (m *UIManager) Check(ctx context.Context) Result {
	if m.remoteURL == "" {
		return Result{Success: false, Message: "no UI remote configured"}
	}
	gitPath, err := m.env.GitPath(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	runner := NewRunner(gitPath, m.distDir, m.timeout)
	tags, err := runner.RemoteTags(ctx, m.remoteURL)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	latest := latestTag(tags)
	if latest == "" {
		return Result{Success: false, Message: "no release tags on UI remote"}
	}

	current := m.state().Current
	return Result{
		Success: true,
		Message: "ok",
		Detail: map[string]any{
			"current":          current,
			"latest":           latest,
			"update_available": current != latest,
		},
	}
}

// Install checks the given tag out into the dist directory, cloning on first
// use, and records it in the version history.
func (m *UIManager) Install(ctx context.Context, version string) Result {
	if version == "" {
		return Result{Success: false, Message: "version is required"}
	}
	gitPath, err := m.env.GitPath(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if gitenv.IsRepo(ctx, gitPath, m.distDir) {
		runner := NewRunner(gitPath, m.distDir, m.timeout)
		if err := runner.Fetch(ctx); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
		if _, err := runner.run(ctx, "checkout", "tags/"+version); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	} else {
		cloneCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		cmd := exec.CommandContext(cloneCtx, gitPath, "clone", "--branch", version, m.remoteURL, m.distDir)
		if out, err := cmd.CombinedOutput(); err != nil {
			return Result{Success: false, Message: fmt.Sprintf("git clone: %s", strings.TrimSpace(string(out)))}
		}
	}

	state := m.state()
	state.History = append(state.History, AppliedVersion{
		Version:   version,
		AppliedAt: float64(time.Now().Unix()),
	})
	state.Current = version
	if err := m.store.Set(uiVersionsKey, state); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	slog.Info("UI assets installed", "version", version)
	return Result{Success: true, Message: "installed", Detail: map[string]any{"version": version}}
}

// History returns the recorded version history, current first.
func (m *UIManager) History() Result {
	state := m.state()
	return Result{
		Success: true,
		Message: "ok",
		Detail: map[string]any{
			"current": state.Current,
			"history": state.History,
		},
	}
}

// Rollback reinstalls the previously applied version.
func (m *UIManager) Rollback(ctx context.Context) Result {
	state := m.state()
	if len(state.History) < 2 {
		return Result{Success: false, Message: "no previous version to roll back to"}
	}
	previous := state.History[len(state.History)-2].Version
	return m.Install(ctx, previous)
}

// latestTag picks the highest version among the tags. Tags that do not parse
// as dotted numbers (with optional v prefix) are ignored.
func latestTag(tags []string) string {
	best := ""
	var bestParts []int
	for _, tag := range tags {
		parts, ok := parseVersion(tag)
		if !ok {
			continue
		}
		if best == "" || compareVersions(parts, bestParts) > 0 {
			best = tag
			bestParts = parts
		}
	}
	return best
}

func parseVersion(tag string) ([]int, bool) {
	trimmed := strings.TrimPrefix(tag, "v")
	fields := strings.Split(trimmed, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, len(parts) > 0
}

func compareVersions(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}
