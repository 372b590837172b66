package gitenv

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// portableDirs are checked, relative to the main repo, when git is not on
// PATH. Windows portable installs unpack into one of these.
var portableDirs = []string{
	"portable_git/bin",
	"portable_git/cmd",
	"tools/git/bin",
}

// Detector locates a usable git executable.
type Detector struct {
	repoDir string
}

// NewDetector creates a detector anchored at the main repo directory.
func NewDetector(repoDir string) *Detector {
	return &Detector{repoDir: repoDir}
}

// Detect finds a git executable: PATH first, then the portable directories.
func (d *Detector) Detect(ctx context.Context) (string, error) {
	if path, err := exec.LookPath("git"); err == nil {
		if _, err := Version(ctx, path); err == nil {
			return path, nil
		}
	}

	binary := "git"
	if runtime.GOOS == "windows" {
		binary = "git.exe"
	}
	for _, dir := range portableDirs {
		candidate := filepath.Join(d.repoDir, dir, binary)
		if _, err := Version(ctx, candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no git executable found")
}

// Version runs `git --version` and returns the trimmed version string.
// A failure means the path does not point at a working git.
func Version(ctx context.Context, gitPath string) (string, error) {
	out, err := exec.CommandContext(ctx, gitPath, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("not a working git executable: %w", err)
	}
	version := strings.TrimSpace(string(out))
	if !strings.HasPrefix(version, "git version") {
		return "", fmt.Errorf("unexpected --version output: %q", version)
	}
	return version, nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, gitPath, dir string) bool {
	out, err := exec.CommandContext(ctx, gitPath, "-C", dir, "rev-parse", "--is-inside-work-tree").Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// InstallGuide returns per-OS installation hints for the UI.
func InstallGuide() map[string]any {
	var steps []string
	switch runtime.GOOS {
	case "windows":
		steps = []string{
			"Download the installer from https://git-scm.com/download/win",
			"Or install via winget: winget install --id Git.Git -e",
			"Restart the bot so the new PATH is picked up",
		}
	case "darwin":
		steps = []string{
			"Install the Xcode command line tools: xcode-select --install",
			"Or install via Homebrew: brew install git",
		}
	default:
		steps = []string{
			"Debian/Ubuntu: sudo apt install git",
			"Fedora: sudo dnf install git",
			"Arch: sudo pacman -S git",
		}
	}
	return map[string]any{
		"os":       runtime.GOOS,
		"steps":    steps,
		"download": "https://git-scm.com/downloads",
	}
}
