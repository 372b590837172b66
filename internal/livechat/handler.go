package livechat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/domain"
	"github.com/neo-mofox/webui/internal/pubsub"
	"github.com/neo-mofox/webui/internal/ws"
)

// excludedPlatform is filtered out of stream listings; these streams belong
// to a sibling integration and are not viewable here.
const excludedPlatform = "astrbot"

const defaultLimit = 100

// Handler exposes the live chat endpoints: a WebSocket for realtime pushes
// and HTTP endpoints for stream listings, history, and sending.
type Handler struct {
	registry  *ws.Registry
	streams   domain.StreamRepository
	messages  domain.MessageRepository
	publisher pubsub.Publisher
}

// NewHandler creates a live chat handler with its dependencies.
func NewHandler(registry *ws.Registry, streams domain.StreamRepository, messages domain.MessageRepository, publisher pubsub.Publisher) *Handler {
	return &Handler{
		registry:  registry,
		streams:   streams,
		messages:  messages,
		publisher: publisher,
	}
}

// ServeWS upgrades the request and runs a subscription session against the
// shared connection registry. Auth has already happened in middleware.
func (h *Handler) ServeWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to upgrade to WebSocket")
	}
	slog.Info("Live chat WebSocket client connected")

	sess := ws.NewSession(h.registry, conn)
	sess.Run(c.Request().Context())

	conn.Close(websocket.StatusNormalClosure, "")
	slog.Info("Live chat WebSocket client disconnected")
	return nil
}

// StreamsGet lists chat streams, newest activity first.
func (h *Handler) StreamsGet(c echo.Context) error {
	limit := queryInt(c, "limit", defaultLimit)

	streams, err := h.streams.List(c.Request().Context(), limit)
	if err != nil {
		slog.Error("Failed to list chat streams", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list streams")
	}

	result := make([]StreamInfo, 0, len(streams))
	for _, s := range streams {
		if s.Platform == excludedPlatform {
			continue
		}
		result = append(result, streamInfo(s))
	}
	return c.JSON(http.StatusOK, result)
}

// MessagesGet returns the history of one stream, ascending by time. The
// before_time query parameter pages backwards.
func (h *Handler) MessagesGet(c echo.Context) error {
	streamID := c.Param("stream_id")
	limit := queryInt(c, "limit", defaultLimit)
	ctx := c.Request().Context()

	var (
		messages []domain.ChatMessage
		err      error
	)
	if raw := c.QueryParam("before_time"); raw != "" {
		before, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid before_time")
		}
		messages, err = h.messages.Before(ctx, streamID, before, limit)
	} else {
		messages, err = h.messages.Recent(ctx, streamID, limit)
	}
	if err != nil {
		slog.Error("Failed to load messages", "stream_id", streamID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}

	result := make([]MessageInfo, 0, len(messages))
	for _, m := range messages {
		result = append(result, messageInfo(m))
	}
	return c.JSON(http.StatusOK, result)
}

// SendPost hands an outbound message to the bot core. The stream must exist
// so the correct platform can be attached.
func (h *Handler) SendPost(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.MessageType == "" {
		req.MessageType = "text"
	}

	ctx := c.Request().Context()
	stream, err := h.streams.Get(ctx, req.StreamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusOK, SendResponse{Success: false, Message: "unknown chat stream"})
		}
		slog.Error("Failed to resolve stream", "stream_id", req.StreamID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve stream")
	}
	if stream.Platform == "" {
		return c.JSON(http.StatusOK, SendResponse{Success: false, Message: "stream has no platform"})
	}

	payload, err := json.Marshal(map[string]any{
		"stream_id":    req.StreamID,
		"platform":     stream.Platform,
		"content":      req.Content,
		"message_type": req.MessageType,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode message")
	}

	if err := h.publisher.Publish(ctx, pubsub.Message{Topic: pubsub.TopicChatSend, Payload: payload}); err != nil {
		slog.Error("Failed to publish outbound message", "stream_id", req.StreamID, "error", err)
		return c.JSON(http.StatusOK, SendResponse{Success: false, Message: "send failed"})
	}

	slog.Info("Message handed to bot core", "stream_id", req.StreamID, "type", req.MessageType)
	return c.JSON(http.StatusOK, SendResponse{Success: true, Message: "sent"})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
