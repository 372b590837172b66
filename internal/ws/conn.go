package ws

import (
	"context"
	"encoding/json"

	"github.com/coder/websocket"
)

// Conn is the opaque bidirectional handle the registry routes messages to.
// The underlying I/O object is owned by the transport layer that accepted it;
// the registry only holds it for routing. All methods return an explicit
// error so the broadcast loop can detect dead connections without relying on
// recovered panics.
type Conn interface {
	// WriteJSON marshals v and sends it as a text frame.
	WriteJSON(ctx context.Context, v any) error
	// WriteText sends a raw text frame.
	WriteText(ctx context.Context, s string) error
	// Close sends a close frame with the given code and reason.
	Close(code websocket.StatusCode, reason string) error
}

// wsConn adapts a *websocket.Conn to the Conn interface.
type wsConn struct {
	c *websocket.Conn
}

// NewConn wraps an accepted WebSocket connection.
func NewConn(c *websocket.Conn) Conn {
	return &wsConn{c: c}
}

func (w *wsConn) WriteJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) WriteText(ctx context.Context, s string) error {
	return w.c.Write(ctx, websocket.MessageText, []byte(s))
}

func (w *wsConn) Close(code websocket.StatusCode, reason string) error {
	return w.c.Close(code, reason)
}
