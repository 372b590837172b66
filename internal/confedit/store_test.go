package confedit_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/confedit"
	"github.com/neo-mofox/webui/internal/domain"
)

const sampleConfig = `[bot]
nickname = "MoFox"
debug = false

[llm]
model = "gpt-4"
temperature = 0.7
`

func newStore(t *testing.T) (*confedit.FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "config/bot.toml", []byte(sampleConfig), 0o644))
	return confedit.NewFileStore(fs, "config/bot.toml", "config/backups"), fs
}

func TestRawRoundTrip(t *testing.T) {
	store, _ := newStore(t)

	raw, err := store.Raw()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, raw)
}

func TestRawMissingFile(t *testing.T) {
	store := confedit.NewFileStore(afero.NewMemMapFs(), "config/none.toml", "config/backups")
	_, err := store.Raw()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadParsesTables(t *testing.T) {
	store, _ := newStore(t)

	parsed, err := store.Load()
	require.NoError(t, err)

	bot, ok := parsed["bot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "MoFox", bot["nickname"])
}

func TestSaveRawRejectsInvalidTOML(t *testing.T) {
	store, _ := newStore(t)

	err := store.SaveRaw("[bot\nbroken =")
	require.Error(t, err)

	// The original content survives a rejected save.
	raw, err := store.Raw()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, raw)
}

func TestSaveRawBacksUpPrevious(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.SaveRaw("[bot]\nnickname = \"NewFox\"\n"))

	backups, err := store.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Contains(t, backups[0].Name, "bot.toml.")

	raw, err := store.Raw()
	require.NoError(t, err)
	assert.Contains(t, raw, "NewFox")
}

func TestMergeUpdatesNestedKeys(t *testing.T) {
	store, _ := newStore(t)

	err := store.Merge(map[string]any{
		"bot": map[string]any{"debug": true},
		"new": map[string]any{"key": "value"},
	})
	require.NoError(t, err)

	parsed, err := store.Load()
	require.NoError(t, err)

	bot := parsed["bot"].(map[string]any)
	assert.Equal(t, true, bot["debug"])
	assert.Equal(t, "MoFox", bot["nickname"], "untouched keys survive the merge")
	assert.Equal(t, "value", parsed["new"].(map[string]any)["key"])
}

func TestRestoreBringsBackOldContent(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.SaveRaw("[bot]\nnickname = \"Changed\"\n"))

	backups, err := store.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	require.NoError(t, store.Restore(backups[0].Name))

	raw, err := store.Raw()
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, raw)
}

func TestRestoreRejectsBadNames(t *testing.T) {
	store, _ := newStore(t)

	assert.Error(t, store.Restore("../../etc/passwd"))
	assert.ErrorIs(t, store.Restore("bot.toml.unknown.bak"), domain.ErrNotFound)
}

func TestPluginStoreListsAndGuards(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "plugins/weather/config.toml", []byte("key = 1\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "plugins/weather/readme.md", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "plugins/empty/readme.md", []byte("x"), 0o644))

	plugins := confedit.NewPluginStore(fs, "plugins")

	list, err := plugins.Plugins()
	require.NoError(t, err)
	require.Len(t, list, 1, "plugins without TOML files are hidden")
	assert.Equal(t, "weather", list[0].Name)
	assert.Equal(t, []string{"config.toml"}, list[0].Files)

	store, err := plugins.Store("weather", "config.toml")
	require.NoError(t, err)
	raw, err := store.Raw()
	require.NoError(t, err)
	assert.Equal(t, "key = 1\n", raw)

	_, err = plugins.Store("../weather", "config.toml")
	assert.Error(t, err)
	_, err = plugins.Store("weather", "../../secret.toml")
	assert.Error(t, err)
	_, err = plugins.Store("weather", "missing.toml")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
