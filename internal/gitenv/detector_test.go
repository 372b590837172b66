package gitenv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionRejectsBogusPath(t *testing.T) {
	_, err := Version(context.Background(), "/nonexistent/git-binary")
	assert.Error(t, err)
}

func TestIsRepoFalseForBogusGit(t *testing.T) {
	assert.False(t, IsRepo(context.Background(), "/nonexistent/git-binary", "."))
}

func TestInstallGuideHasSteps(t *testing.T) {
	guide := InstallGuide()
	assert.NotEmpty(t, guide["os"])
	steps, ok := guide["steps"].([]string)
	assert.True(t, ok)
	assert.NotEmpty(t, steps)
}
