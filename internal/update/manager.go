package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo-mofox/webui/internal/gitenv"
)

// Result is the uniform outcome shape for update operations.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

// Manager performs main-program updates on the bot repository.
type Manager struct {
	env     *gitenv.Manager
	repoDir string
	timeout time.Duration
}

// NewManager creates an update manager for the main repo.
func NewManager(env *gitenv.Manager, repoDir string, timeout time.Duration) *Manager {
	return &Manager{env: env, repoDir: repoDir, timeout: timeout}
}

func (m *Manager) runner(ctx context.Context) (*Runner, error) {
	gitPath, err := m.env.GitPath(ctx)
	if err != nil {
		return nil, fmt.Errorf("git is not available: %w", err)
	}
	if !gitenv.IsRepo(ctx, gitPath, m.repoDir) {
		return nil, fmt.Errorf("%s is not a git repository", m.repoDir)
	}
	return NewRunner(gitPath, m.repoDir, m.timeout), nil
}

// Status reports the current branch, HEAD commit and local-change state.
func (m *Manager) Status(ctx context.Context) Result {
	runner, err := m.runner(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	branch := runner.CurrentBranch(ctx)
	head, err := runner.HeadInfo(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	dirty, err := runner.HasLocalChanges(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	return Result{
		Success: true,
		Message: "ok",
		Detail: map[string]any{
			"branch":        branch,
			"commit":        head,
			"local_changes": dirty,
		},
	}
}

// Check fetches the remote and reports how far behind HEAD is, with the
// pending commit log.
func (m *Manager) Check(ctx context.Context) Result {
	runner, err := m.runner(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if err := runner.Fetch(ctx); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	branch := runner.CurrentBranch(ctx)
	behind, err := runner.BehindCount(ctx, branch)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	var pending []Commit
	if behind > 0 {
		pending, err = runner.PendingCommits(ctx, branch)
		if err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	}

	message := "already up to date"
	if behind > 0 {
		message = fmt.Sprintf("%d commits behind origin/%s", behind, branch)
	}
	return Result{
		Success: true,
		Message: message,
		Detail: map[string]any{
			"branch":  branch,
			"behind":  behind,
			"commits": pending,
		},
	}
}

// Update pulls the latest commits. With stash set, local changes are stashed
// first; otherwise a dirty work tree aborts the update.
func (m *Manager) Update(ctx context.Context, stash bool) Result {
	runner, err := m.runner(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	dirty, err := runner.HasLocalChanges(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if dirty {
		if !stash {
			return Result{Success: false, Message: "local changes present; retry with stash enabled"}
		}
		if err := runner.Stash(ctx); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
		slog.Info("Stashed local changes before update")
	}

	oldCommit, err := runner.CurrentCommit(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	branch := runner.CurrentBranch(ctx)
	if _, err := runner.Pull(ctx, branch); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	newCommit, err := runner.CurrentCommit(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	message := "already up to date"
	if oldCommit != newCommit {
		message = "updated"
	}
	slog.Info("Main program update finished", "old", oldCommit, "new", newCommit)
	return Result{
		Success: true,
		Message: message,
		Detail: map[string]any{
			"old_commit": oldCommit,
			"new_commit": newCommit,
			"stashed":    dirty,
		},
	}
}

// Current returns the HEAD commit.
func (m *Manager) Current(ctx context.Context) Result {
	runner, err := m.runner(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	head, err := runner.HeadInfo(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	return Result{Success: true, Message: "ok", Detail: head}
}

// Rollback hard-resets to a commit after verifying the hash exists.
func (m *Manager) Rollback(ctx context.Context, hash string) Result {
	if hash == "" {
		return Result{Success: false, Message: "commit hash is required"}
	}

	runner, err := m.runner(ctx)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if !runner.HashExists(ctx, hash) {
		return Result{Success: false, Message: fmt.Sprintf("unknown commit: %s", hash)}
	}
	if err := runner.ResetHard(ctx, hash); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	slog.Warn("Rolled main program back", "commit", hash)
	return Result{Success: true, Message: "rolled back", Detail: map[string]any{"commit": hash}}
}
