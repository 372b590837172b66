package update

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes main-program and UI update endpoints.
type Handler struct {
	manager *Manager
	ui      *UIManager
}

// NewHandler creates an update handler.
func NewHandler(manager *Manager, ui *UIManager) *Handler {
	return &Handler{manager: manager, ui: ui}
}

// StatusGet reports branch, HEAD and work-tree state.
func (h *Handler) StatusGet(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Status(c.Request().Context()))
}

// CheckGet fetches and reports pending commits.
func (h *Handler) CheckGet(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Check(c.Request().Context()))
}

type updateRequest struct {
	Stash bool `json:"stash"`
}

// UpdatePost pulls the latest commits.
func (h *Handler) UpdatePost(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, h.manager.Update(c.Request().Context(), req.Stash))
}

// CurrentGet returns the HEAD commit.
func (h *Handler) CurrentGet(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Current(c.Request().Context()))
}

type rollbackRequest struct {
	Hash string `json:"hash" validate:"required"`
}

// RollbackPost hard-resets to a known commit.
func (h *Handler) RollbackPost(c echo.Context) error {
	var req rollbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.manager.Rollback(c.Request().Context(), req.Hash))
}

// UICheckGet compares the installed UI version with the newest remote tag.
func (h *Handler) UICheckGet(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ui.Check(c.Request().Context()))
}

type uiInstallRequest struct {
	Version string `json:"version" validate:"required"`
}

// UIInstallPost installs a UI release tag into the dist directory.
func (h *Handler) UIInstallPost(c echo.Context) error {
	var req uiInstallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.ui.Install(c.Request().Context(), req.Version))
}

// UIHistoryGet lists applied UI versions.
func (h *Handler) UIHistoryGet(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ui.History())
}

// UIRollbackPost reinstalls the previous UI version.
func (h *Handler) UIRollbackPost(c echo.Context) error {
	return c.JSON(http.StatusOK, h.ui.Rollback(c.Request().Context()))
}
