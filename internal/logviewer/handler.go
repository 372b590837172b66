package logviewer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/pubsub"
	"github.com/neo-mofox/webui/internal/ws"
)

// LogsTopic is the singleton registry topic for realtime log streaming.
const LogsTopic = "logs"

// Handler exposes log file browsing and the realtime log WebSocket.
type Handler struct {
	store    *Store
	registry *ws.Registry
}

// NewHandler creates a log viewer handler.
func NewHandler(store *Store, registry *ws.Registry) *Handler {
	return &Handler{store: store, registry: registry}
}

// ServeWS streams live log records. The session is pinned to the logs topic;
// clients only send heartbeats.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to upgrade to WebSocket")
	}
	slog.Info("Realtime log client connected", "connections", h.registry.Len(LogsTopic)+1)

	sess := ws.NewPinnedSession(h.registry, conn, LogsTopic)
	sess.Run(c.Request().Context())

	conn.Close(websocket.StatusNormalClosure, "")
	slog.Info("Realtime log client disconnected", "connections", h.registry.Len(LogsTopic))
	return nil
}

// FilesGet lists the historical log files.
func (h *Handler) FilesGet(c echo.Context) error {
	files, err := h.store.Files()
	if err != nil {
		slog.Error("Failed to list log files", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list log files")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "files": files})
}

// SearchGet filters and pages through one log file.
func (h *Handler) SearchGet(c echo.Context) error {
	name := c.QueryParam("file")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	filter := Filter{
		Level:   c.QueryParam("level"),
		Logger:  c.QueryParam("logger"),
		Keyword: c.QueryParam("q"),
		Regex:   c.QueryParam("regex"),
	}
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 200)

	entries, total, err := h.store.Search(name, filter, offset, limit)
	if err != nil {
		slog.Error("Log search failed", "file", name, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"entries": entries,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

// LoggersGet lists the distinct logger names in one file.
func (h *Handler) LoggersGet(c echo.Context) error {
	name := c.QueryParam("file")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	loggers, err := h.store.Loggers(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "loggers": loggers})
}

// StatsGet aggregates one file by level and logger.
func (h *Handler) StatsGet(c echo.Context) error {
	name := c.QueryParam("file")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	stats, err := h.store.FileStats(name)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"total":     stats.Total,
		"by_level":  stats.ByLevel,
		"by_logger": stats.ByLogger,
	})
}

// Bridge subscribes to emitted log records on the bus and broadcasts each one
// to the realtime log subscribers.
type Bridge struct {
	subscriber pubsub.Subscriber
	registry   *ws.Registry
}

// NewBridge creates the log-event-to-WebSocket bridge.
func NewBridge(subscriber pubsub.Subscriber, registry *ws.Registry) *Bridge {
	return &Bridge{subscriber: subscriber, registry: registry}
}

// Start begins consuming log events. It returns once the subscription is active.
func (b *Bridge) Start(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, pubsub.TopicLogEmitted, func(ctx context.Context, msg pubsub.Message) error {
		var record map[string]any
		if err := json.Unmarshal(msg.Payload, &record); err != nil {
			return nil // malformed, drop silently
		}
		b.registry.Broadcast(ctx, LogsTopic, record)
		return nil
	})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
