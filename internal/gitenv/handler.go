package gitenv

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the git environment endpoints.
type Handler struct {
	manager *Manager
}

// NewHandler creates a git environment handler.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// StatusGet reports git availability, version and repo detection.
func (h *Handler) StatusGet(c echo.Context) error {
	status := h.manager.Status(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"success": true, "status": status})
}

type setPathRequest struct {
	Path string `json:"path" validate:"required"`
}

// PathPost configures an explicit git executable.
func (h *Handler) PathPost(c echo.Context) error {
	var req setPathRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	state, err := h.manager.SetPath(c.Request().Context(), req.Path)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "state": state})
}

// AutoDetectPost searches for a git executable and persists the result.
func (h *Handler) AutoDetectPost(c echo.Context) error {
	state, err := h.manager.AutoDetect(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{"success": false, "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "state": state})
}

// InstallGuideGet returns per-OS install hints.
func (h *Handler) InstallGuideGet(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true, "guide": InstallGuide()})
}
