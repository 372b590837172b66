package logviewer_test

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/logviewer"
)

const sampleLog = `[10:00:01] chat_manager | INFO | stream registered
[10:00:02] chat_manager | DEBUG | heartbeat ok
[10:00:03] event_manager | ERROR | handler failed: boom
this line continues the error above
[10:00:04] event_manager | INFO | recovered
not a log line at all
`

func newStore(t *testing.T) (*logviewer.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("logs", 0o755))
	require.NoError(t, afero.WriteFile(fs, "logs/app.log", []byte(sampleLog), 0o644))
	return logviewer.NewStore(fs, "logs"), fs
}

func TestFilesListsLogFilesOnly(t *testing.T) {
	store, fs := newStore(t)
	require.NoError(t, afero.WriteFile(fs, "logs/notes.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "logs/old.log.gz", []byte("x"), 0o644))

	files, err := store.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)

	names := []string{files[0].Name, files[1].Name}
	assert.Contains(t, names, "app.log")
	assert.Contains(t, names, "old.log.gz")
	for _, f := range files {
		if f.Name == "old.log.gz" {
			assert.True(t, f.Compressed)
		}
	}
}

func TestFilesMissingDirIsEmpty(t *testing.T) {
	store := logviewer.NewStore(afero.NewMemMapFs(), "nope")
	files, err := store.Files()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSearchParsesAndFilters(t *testing.T) {
	store, _ := newStore(t)

	entries, total, err := store.Search("app.log", logviewer.Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, total, "unparseable lines do not count as entries")
	require.Len(t, entries, 4)
	assert.Equal(t, "stream registered", entries[0].Event)
	assert.Equal(t, 1, entries[0].LineNumber)

	// Continuation lines are folded into the previous entry.
	assert.Contains(t, entries[2].Event, "this line continues")

	entries, total, err = store.Search("app.log", logviewer.Filter{Level: "ERROR"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "event_manager", entries[0].LoggerName)

	entries, _, err = store.Search("app.log", logviewer.Filter{Logger: "chat_manager", Keyword: "heartbeat"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBUG", entries[0].Level)

	entries, _, err = store.Search("app.log", logviewer.Filter{Regex: `failed: \w+`}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSearchPagination(t *testing.T) {
	store, _ := newStore(t)

	entries, total, err := store.Search("app.log", logviewer.Filter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "heartbeat ok", entries[0].Event)

	entries, total, err = store.Search("app.log", logviewer.Filter{}, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, entries)
}

func TestSearchRejectsBadInput(t *testing.T) {
	store, _ := newStore(t)

	_, _, err := store.Search("../etc/passwd", logviewer.Filter{}, 0, 0)
	assert.Error(t, err, "path traversal must be rejected")

	_, _, err = store.Search("app.log", logviewer.Filter{Regex: "("}, 0, 0)
	assert.Error(t, err, "invalid regex must be reported")
}

func TestSearchReadsGzip(t *testing.T) {
	fs := afero.NewMemMapFs()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("[09:00:00] boot | INFO | started\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, afero.WriteFile(fs, "logs/rotated.log.gz", buf.Bytes(), 0o644))

	store := logviewer.NewStore(fs, "logs")
	entries, total, err := store.Search("rotated.log.gz", logviewer.Filter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "started", entries[0].Event)
}

func TestLoggersAndStats(t *testing.T) {
	store, _ := newStore(t)

	loggers, err := store.Loggers("app.log")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_manager", "event_manager"}, loggers)

	stats, err := store.FileStats("app.log")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByLevel["INFO"])
	assert.Equal(t, 1, stats.ByLevel["ERROR"])
	assert.Equal(t, 2, stats.ByLogger["event_manager"])
}
