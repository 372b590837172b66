package confedit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/neo-mofox/webui/internal/ws"
)

// ConfigTopic is the registry topic for config change notifications.
const ConfigTopic = "config"

// changedFrame is pushed to config subscribers when a TOML file changes on
// disk, so the UI can prompt for a reload.
type changedFrame struct {
	Type string `json:"type"`
	File string `json:"file"`
}

// Watcher broadcasts config file changes to WebSocket subscribers.
type Watcher struct {
	registry *ws.Registry
	dirs     []string
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given config directories.
func NewWatcher(registry *ws.Registry, dirs ...string) *Watcher {
	return &Watcher{registry: registry, dirs: dirs}
}

// Start begins watching. It returns once the directories are registered; the
// event loop stops when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	w.watcher = watcher

	for _, dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			slog.Warn("Failed to watch config dir", "dir", dir, "error", err)
		}
	}

	go w.watch(ctx)
	slog.Debug("Started config file watcher", "dirs", w.dirs)
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer func() {
		w.watcher.Close()
		slog.Info("Config file watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".toml") {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	file := filepath.Base(event.Name)
	slog.Debug("Config file changed", "event", event.Op.String(), "file", file)
	w.registry.Broadcast(ctx, ConfigTopic, changedFrame{Type: "config_changed", File: file})
}
