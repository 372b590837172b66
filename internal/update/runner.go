package update

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Commit is one git commit in a pending-update listing.
type Commit struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

// commitLogFormat keeps the fields separable; \x1f never appears in commit
// metadata.
const commitLogFormat = "%h\x1f%s\x1f%an\x1f%ad"

// Runner executes git against one repository with a per-command timeout.
type Runner struct {
	gitPath string
	repoDir string
	timeout time.Duration
}

// NewRunner creates a git runner for repoDir.
func NewRunner(gitPath, repoDir string, timeout time.Duration) *Runner {
	return &Runner{gitPath: gitPath, repoDir: repoDir, timeout: timeout}
}

// run executes one git command, returning trimmed stdout. Stderr is folded
// into the error.
func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.gitPath, append([]string{"-C", r.repoDir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], detail)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// CurrentBranch returns the checked-out branch, falling back to "main" for a
// detached HEAD.
func (r *Runner) CurrentBranch(ctx context.Context) string {
	out, err := r.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil || out == "" {
		return "main"
	}
	return out
}

// CurrentCommit returns the HEAD commit hash.
func (r *Runner) CurrentCommit(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "HEAD")
}

// HeadInfo returns the HEAD commit as a listing entry.
func (r *Runner) HeadInfo(ctx context.Context) (*Commit, error) {
	out, err := r.run(ctx, "log", "-1", "--pretty=format:"+commitLogFormat, "--date=iso")
	if err != nil {
		return nil, err
	}
	commits := parseCommitLog(out)
	if len(commits) == 0 {
		return nil, fmt.Errorf("no commits in repository")
	}
	return &commits[0], nil
}

// Fetch updates the remote tracking refs.
func (r *Runner) Fetch(ctx context.Context) error {
	_, err := r.run(ctx, "fetch", "origin")
	return err
}

// BehindCount reports how many commits origin/branch is ahead of HEAD.
func (r *Runner) BehindCount(ctx context.Context, branch string) (int, error) {
	out, err := r.run(ctx, "rev-list", "--count", "HEAD..origin/"+branch)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	return n, nil
}

// PendingCommits lists the commits an update would apply, newest first.
func (r *Runner) PendingCommits(ctx context.Context, branch string) ([]Commit, error) {
	out, err := r.run(ctx, "log", "HEAD..origin/"+branch,
		"--pretty=format:"+commitLogFormat, "--date=iso")
	if err != nil {
		return nil, err
	}
	return parseCommitLog(out), nil
}

// HasLocalChanges reports uncommitted modifications in the work tree.
func (r *Runner) HasLocalChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Stash saves local changes away before an update.
func (r *Runner) Stash(ctx context.Context) error {
	_, err := r.run(ctx, "stash", "push", "-u", "-m", "webui auto-stash before update")
	return err
}

// Pull fast-forwards the current branch. Diverged histories fail rather than
// creating a merge commit.
func (r *Runner) Pull(ctx context.Context, branch string) (string, error) {
	return r.run(ctx, "pull", "--ff-only", "origin", branch)
}

// HashExists verifies that a commit hash resolves in this repository.
func (r *Runner) HashExists(ctx context.Context, hash string) bool {
	_, err := r.run(ctx, "cat-file", "-e", hash+"^{commit}")
	return err == nil
}

// ResetHard moves HEAD (and the work tree) to the given commit.
func (r *Runner) ResetHard(ctx context.Context, hash string) error {
	_, err := r.run(ctx, "reset", "--hard", hash)
	return err
}

// RemoteTags lists tag names from a remote URL, as `ls-remote --tags` prints
// them.
func (r *Runner) RemoteTags(ctx context.Context, remoteURL string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.gitPath, "ls-remote", "--tags", remoteURL)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-remote: %w", err)
	}
	return parseRemoteTags(string(out)), nil
}

func parseCommitLog(out string) []Commit {
	if out == "" {
		return nil
	}
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\x1f")
		if len(parts) != 4 {
			continue
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Subject: parts[1],
			Author:  parts[2],
			Date:    parts[3],
		})
	}
	return commits
}

// parseRemoteTags extracts tag names, skipping peeled ^{} entries.
func parseRemoteTags(out string) []string {
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := fields[1]
		if !strings.HasPrefix(ref, "refs/tags/") || strings.HasSuffix(ref, "^{}") {
			continue
		}
		tags = append(tags, strings.TrimPrefix(ref, "refs/tags/"))
	}
	return tags
}
