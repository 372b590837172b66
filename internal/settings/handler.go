package settings

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/domain"
)

// Handler exposes the settings KV store and the wallpaper endpoints.
type Handler struct {
	store     *Store
	wallpaper *Wallpaper
}

// NewHandler creates a settings handler.
func NewHandler(store *Store, wallpaper *Wallpaper) *Handler {
	return &Handler{store: store, wallpaper: wallpaper}
}

// KeyGet returns the value stored under a key.
func (h *Handler) KeyGet(c echo.Context) error {
	key := c.Param("key")
	var value any
	err := h.store.Get(key, &value)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "setting not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "key": key, "value": value})
}

// KeyPut stores a value under a key.
func (h *Handler) KeyPut(c echo.Context) error {
	key := c.Param("key")
	var value any
	if err := c.Bind(&value); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.store.Set(key, value); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Debug("Setting saved", "key", key)
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// WallpaperPost accepts a multipart image upload as the new wallpaper.
func (h *Handler) WallpaperPost(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file field is required")
	}
	if fileHeader.Size > MaxWallpaperSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to open upload")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxWallpaperSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read upload")
	}

	if err := h.wallpaper.Save(fileHeader.Filename, data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slog.Info("Wallpaper updated", "filename", fileHeader.Filename, "size", len(data))
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// WallpaperImageGet serves the current wallpaper. Unauthenticated; the UI
// loads it from an <img> tag.
func (h *Handler) WallpaperImageGet(c echo.Context) error {
	data, contentType, err := h.wallpaper.Load()
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no wallpaper set")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load wallpaper")
	}
	return c.Blob(http.StatusOK, contentType, data)
}

// WallpaperDelete removes the current wallpaper.
func (h *Handler) WallpaperDelete(c echo.Context) error {
	if err := h.wallpaper.Delete(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete wallpaper")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
