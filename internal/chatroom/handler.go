package chatroom

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/neo-mofox/webui/internal/domain"
)

const defaultMessageLimit = 50

// Handler exposes the simulated chatroom API: virtual user management, the
// transcript, and the send/poll message loop.
type Handler struct {
	storage  *Storage
	adapter  *Adapter
	streams  domain.StreamRepository
	messages domain.MessageRepository
}

// NewHandler creates a chatroom handler.
func NewHandler(storage *Storage, adapter *Adapter, streams domain.StreamRepository, messages domain.MessageRepository) *Handler {
	return &Handler{storage: storage, adapter: adapter, streams: streams, messages: messages}
}

// UsersGet lists all virtual users.
func (h *Handler) UsersGet(c echo.Context) error {
	users, err := h.storage.List(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list chatroom users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "users": users})
}

// UsersPost creates a virtual user.
func (h *Handler) UsersPost(c echo.Context) error {
	var params CreateParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.storage.Create(c.Request().Context(), params)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if err != nil {
		slog.Error("Failed to create chatroom user", "user_id", params.UserID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create user")
	}
	slog.Info("Created chatroom user", "user_id", user.UserID)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": user})
}

// UserPut partially updates a virtual user.
func (h *Handler) UserPut(c echo.Context) error {
	userID := c.Param("id")
	var params UpdateParams
	if err := c.Bind(&params); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.storage.Update(c.Request().Context(), userID, params)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		slog.Error("Failed to update chatroom user", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": user})
}

// UserDelete removes a virtual user along with their chatroom streams and
// messages.
func (h *Handler) UserDelete(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.Param("id")

	if err := h.storage.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		slog.Error("Failed to delete chatroom user", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}
	if err := h.purgeStreams(c, userID, true); err != nil {
		slog.Warn("Failed to purge chatroom streams", "user_id", userID, "error", err)
	}

	slog.Info("Deleted chatroom user", "user_id", userID)
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// UserResetPost restores the user's initial persona and clears their chat
// history.
func (h *Handler) UserResetPost(c echo.Context) error {
	userID := c.Param("id")

	user, err := h.storage.Reset(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		slog.Error("Failed to reset chatroom user", "user_id", userID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset user")
	}
	if err := h.purgeStreams(c, userID, false); err != nil {
		slog.Warn("Failed to purge chatroom messages", "user_id", userID, "error", err)
	}

	slog.Info("Reset chatroom user", "user_id", userID)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "user": user})
}

// purgeStreams deletes the user's chatroom messages, and with dropStreams the
// stream records too.
func (h *Handler) purgeStreams(c echo.Context, userID string, dropStreams bool) error {
	ctx := c.Request().Context()
	streams, err := h.streams.ListByUser(ctx, Platform, userID)
	if err != nil {
		return err
	}
	for _, stream := range streams {
		if err := h.messages.DeleteByStream(ctx, stream.StreamID); err != nil {
			return err
		}
		if dropStreams {
			if err := h.streams.Delete(ctx, stream.StreamID); err != nil {
				return err
			}
		}
	}
	return nil
}

// CopyableUsersGet lists person records from real platforms that can seed a
// new virtual user.
func (h *Handler) CopyableUsersGet(c echo.Context) error {
	persons, err := h.storage.Copyable(c.Request().Context())
	if err != nil {
		slog.Error("Failed to list copyable users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list copyable users")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "users": persons})
}

// MessagesGet returns the stored chatroom transcript, optionally restricted
// to one sender.
func (h *Handler) MessagesGet(c echo.Context) error {
	userID := c.QueryParam("user_id")
	limit := defaultMessageLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.messages.ByPlatform(c.Request().Context(), Platform, userID, limit)
	if err != nil {
		slog.Error("Failed to load chatroom messages", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "messages": messages})
}

// MessageGet looks one message up, in the adapter cache first and then the
// database.
func (h *Handler) MessageGet(c echo.Context) error {
	messageID := c.Param("message_id")

	if msg, ok := h.adapter.Cached(messageID); ok {
		return c.JSON(http.StatusOK, map[string]any{"success": true, "message": msg})
	}

	msg, err := h.messages.GetByMessageID(c.Request().Context(), messageID)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "message not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load message")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": msg})
}

// SendRequest is one outbound chatroom message from the UI.
type SendRequest struct {
	UserID      string   `json:"user_id" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	MessageType string   `json:"message_type" validate:"omitempty,oneof=text image emoji"`
	Images      []string `json:"images"`
	Emojis      []string `json:"emojis"`
}

// SendPost hands a user message to the bot adapter and echoes it back.
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

	user, err := h.storage.Get(c.Request().Context(), req.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load user")
	}

	msg := Message{
		MessageID:   uuid.NewString(),
		UserID:      user.UserID,
		Nickname:    user.Nickname,
		Content:     req.Content,
		Images:      req.Images,
		Emojis:      req.Emojis,
		Timestamp:   unixNow(),
		MessageType: req.MessageType,
	}
	if err := h.adapter.Send(c.Request().Context(), msg); err != nil {
		slog.Error("Failed to hand message to adapter", "user_id", req.UserID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send message")
	}

	slog.Debug("Chatroom message sent", "message_id", msg.MessageID, "user_id", msg.UserID)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": msg})
}

// PollGet drains pending bot replies, optionally only those answering one
// user's messages.
func (h *Handler) PollGet(c echo.Context) error {
	replies := h.adapter.Pending(c.QueryParam("user_id"))
	if replies == nil {
		replies = []Message{}
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "messages": replies})
}
