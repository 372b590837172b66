package confedit

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/domain"
)

// Handler exposes config editing for the named core files and for plugin
// configs. Named stores are keyed by URL segment ("core", "model").
type Handler struct {
	stores  map[string]*FileStore
	plugins *PluginStore
}

// NewHandler creates a config editing handler.
func NewHandler(stores map[string]*FileStore, plugins *PluginStore) *Handler {
	return &Handler{stores: stores, plugins: plugins}
}

func (h *Handler) store(c echo.Context) (*FileStore, error) {
	name := c.Param("name")
	store, ok := h.stores[name]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown config: "+name)
	}
	return store, nil
}

// RawGet returns the file's current text.
func (h *Handler) RawGet(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}
	raw, err := store.Raw()
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "config file does not exist")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read config")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "content": raw})
}

type rawSaveRequest struct {
	Content string `json:"content" validate:"required"`
}

// RawPost validates and writes new file content, backing the old one up.
func (h *Handler) RawPost(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}

	var req rawSaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := store.SaveRaw(req.Content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Info("Config file saved", "path", store.Path())
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// ParsedGet returns the file parsed into key-values.
func (h *Handler) ParsedGet(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}
	parsed, err := store.Load()
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "config file does not exist")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "config": parsed})
}

// ParsedPut merges updates into the parsed config and re-renders the file.
func (h *Handler) ParsedPut(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}

	var updates map[string]any
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no updates given")
	}

	if err := store.Merge(updates); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "config file does not exist")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Info("Config updated", "path", store.Path(), "keys", len(updates))
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// BackupsGet lists backups of the file, newest first.
func (h *Handler) BackupsGet(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}
	backups, err := store.Backups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list backups")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "backups": backups})
}

// RestorePost replaces the file with a backup's content.
func (h *Handler) RestorePost(c echo.Context) error {
	store, err := h.store(c)
	if err != nil {
		return err
	}

	name := c.Param("backup")
	if err := store.Restore(name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "backup not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Info("Config restored from backup", "path", store.Path(), "backup", name)
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// PluginsGet lists plugins with editable configs.
func (h *Handler) PluginsGet(c echo.Context) error {
	plugins, err := h.plugins.Plugins()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list plugins")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "plugins": plugins})
}

// PluginFilesGet lists one plugin's config files.
func (h *Handler) PluginFilesGet(c echo.Context) error {
	files, err := h.plugins.Files(c.Param("plugin"))
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "plugin not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "files": files})
}

func (h *Handler) pluginStore(c echo.Context) (*FileStore, error) {
	store, err := h.plugins.Store(c.Param("plugin"), c.Param("file"))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "plugin config not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return store, nil
}

// PluginRawGet returns one plugin config file's text.
func (h *Handler) PluginRawGet(c echo.Context) error {
	store, err := h.pluginStore(c)
	if err != nil {
		return err
	}
	raw, err := store.Raw()
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "config file does not exist")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "content": raw})
}

// PluginRawPost saves one plugin config file.
func (h *Handler) PluginRawPost(c echo.Context) error {
	store, err := h.pluginStore(c)
	if err != nil {
		return err
	}

	var req rawSaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := store.SaveRaw(req.Content); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Info("Plugin config saved", "path", store.Path())
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// PluginBackupsGet lists one plugin config file's backups.
func (h *Handler) PluginBackupsGet(c echo.Context) error {
	store, err := h.pluginStore(c)
	if err != nil {
		return err
	}
	backups, err := store.Backups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list backups")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "backups": backups})
}

// PluginRestorePost restores one plugin config file from a backup.
func (h *Handler) PluginRestorePost(c echo.Context) error {
	store, err := h.pluginStore(c)
	if err != nil {
		return err
	}
	if err := store.Restore(c.Param("backup")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "backup not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
