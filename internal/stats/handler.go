package stats

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
)

// signalDelay gives the HTTP response time to flush before the process
// signals itself.
const signalDelay = time.Second

// Handler exposes dashboard statistics and the system lifecycle endpoints.
type Handler struct {
	collector *Collector

	// signalSelf is swappable for tests.
	signalSelf func(sig syscall.Signal) error
}

// NewHandler creates a stats handler.
func NewHandler(collector *Collector) *Handler {
	return &Handler{
		collector: collector,
		signalSelf: func(sig syscall.Signal) error {
			proc, err := os.FindProcess(os.Getpid())
			if err != nil {
				return err
			}
			return proc.Signal(sig)
		},
	}
}

// OverviewGet returns the dashboard summary card.
func (h *Handler) OverviewGet(c echo.Context) error {
	ov := h.collector.Overview(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]any{"success": true, "overview": ov})
}

// MessageStatsGet buckets recent traffic per hour.
func (h *Handler) MessageStatsGet(c echo.Context) error {
	hours := 24
	if raw := c.QueryParam("hours"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			hours = n
		}
	}

	buckets, err := h.collector.MessageStats(c.Request().Context(), hours)
	if err != nil {
		slog.Error("Failed to compute message stats", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute message stats")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "buckets": buckets})
}

// ChatStatsGet ranks streams by recent traffic.
func (h *Handler) ChatStatsGet(c echo.Context) error {
	topN := 10
	if raw := c.QueryParam("top"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			topN = n
		}
	}

	ranked, err := h.collector.ChatStats(c.Request().Context(), topN)
	if err != nil {
		slog.Error("Failed to compute chat stats", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute chat stats")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "streams": ranked})
}

// DailyQuoteGet returns today's quote.
func (h *Handler) DailyQuoteGet(c echo.Context) error {
	quote := DailyQuote(time.Now())
	return c.JSON(http.StatusOK, map[string]any{"success": true, "quote": quote})
}

// RestartPost asks the supervisor to restart the bot by terminating this
// process after the response flushes.
func (h *Handler) RestartPost(c echo.Context) error {
	slog.Warn("Restart requested via API")
	h.delayedSignal(syscall.SIGTERM)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "restarting"})
}

// ShutdownPost terminates the bot after the response flushes.
func (h *Handler) ShutdownPost(c echo.Context) error {
	slog.Warn("Shutdown requested via API")
	h.delayedSignal(syscall.SIGTERM)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "shutting down"})
}

func (h *Handler) delayedSignal(sig syscall.Signal) {
	go func() {
		time.Sleep(signalDelay)
		if err := h.signalSelf(sig); err != nil {
			slog.Error("Failed to signal own process", "error", err)
		}
	}()
}
