package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommitLog(t *testing.T) {
	out := "abc1234\x1fFix the thing\x1fAlice\x1f2026-08-01 10:00:00 +0800\n" +
		"def5678\x1fAdd a feature\x1fBob\x1f2026-07-30 09:00:00 +0800"

	commits := parseCommitLog(out)
	assert.Len(t, commits, 2)
	assert.Equal(t, "abc1234", commits[0].Hash)
	assert.Equal(t, "Fix the thing", commits[0].Subject)
	assert.Equal(t, "Bob", commits[1].Author)
}

func TestParseCommitLogEmpty(t *testing.T) {
	assert.Empty(t, parseCommitLog(""))
	assert.Empty(t, parseCommitLog("garbage line without separators"))
}

func TestParseRemoteTags(t *testing.T) {
	out := "abc\trefs/tags/v1.0.0\n" +
		"def\trefs/tags/v1.1.0\n" +
		"def\trefs/tags/v1.1.0^{}\n" +
		"ghi\trefs/heads/main\n"

	tags := parseRemoteTags(out)
	assert.Equal(t, []string{"v1.0.0", "v1.1.0"}, tags)
}

func TestLatestTag(t *testing.T) {
	assert.Equal(t, "v1.10.0", latestTag([]string{"v1.2.0", "v1.10.0", "v1.9.9"}))
	assert.Equal(t, "2.0", latestTag([]string{"1.9", "2.0", "nightly"}))
	assert.Equal(t, "", latestTag([]string{"nightly", "latest"}))
	assert.Equal(t, "", latestTag(nil))
}

func TestCompareVersions(t *testing.T) {
	a, _ := parseVersion("v1.2.3")
	b, _ := parseVersion("1.2")
	assert.Equal(t, 1, compareVersions(a, b))
	assert.Equal(t, -1, compareVersions(b, a))
	assert.Equal(t, 0, compareVersions(a, a))
}
