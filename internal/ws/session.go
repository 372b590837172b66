package ws

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coder/websocket"
)

// Session owns the read loop for one accepted WebSocket connection. It parses
// inbound control messages, applies them to the registry, and unwinds every
// subscription the connection made when the loop ends. A new connection after
// a disconnect is a wholly new session; there is no resume.
type Session struct {
	registry *Registry
	raw      *websocket.Conn
	conn     Conn

	// fixedTopic, when non-empty, pins the session to a single topic at
	// startup (the realtime log endpoint). subscribe/unsubscribe controls are
	// ignored for pinned sessions; only ping keeps its meaning.
	fixedTopic string

	subscribed map[string]struct{}
}

// NewSession creates a session for an accepted connection.
func NewSession(registry *Registry, raw *websocket.Conn) *Session {
	return &Session{
		registry:   registry,
		raw:        raw,
		conn:       NewConn(raw),
		subscribed: make(map[string]struct{}),
	}
}

// NewPinnedSession creates a session that is subscribed to a single topic for
// its whole lifetime.
func NewPinnedSession(registry *Registry, raw *websocket.Conn, topic string) *Session {
	s := NewSession(registry, raw)
	s.fixedTopic = topic
	return s
}

// Run reads control messages until the client disconnects or ctx is canceled.
// It always leaves the registry clean: every topic this session subscribed to
// has the connection removed before Run returns.
func (s *Session) Run(ctx context.Context) {
	if s.fixedTopic != "" {
		s.registry.Subscribe(s.fixedTopic, s.conn)
		s.subscribed[s.fixedTopic] = struct{}{}
	}

	defer func() {
		for topic := range s.subscribed {
			s.registry.Unsubscribe(topic, s.conn)
		}
		slog.Debug("WebSocket session cleaned up", "topics", len(s.subscribed))
	}()

	for {
		_, data, err := s.raw.Read(ctx)
		if err != nil {
			slog.Debug("WebSocket read ended", "error", err)
			return
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			continue
		}

		// Plain-text heartbeat: some frontends send a bare "ping" rather
		// than the JSON control form. Answer in kind.
		if text == "ping" {
			if err := s.conn.WriteText(ctx, "pong"); err != nil {
				return
			}
			continue
		}

		s.handleControl(ctx, ParseControl(data))
	}
}

func (s *Session) handleControl(ctx context.Context, ctl Control) {
	switch ctl.Kind {
	case KindSubscribe:
		if s.fixedTopic != "" {
			return
		}
		s.registry.Subscribe(ctl.StreamID, s.conn)
		s.subscribed[ctl.StreamID] = struct{}{}
		if err := s.conn.WriteJSON(ctx, NewSubscribed(ctl.StreamID)); err != nil {
			slog.Debug("Failed to send subscribe ack", "stream_id", ctl.StreamID, "error", err)
		}

	case KindUnsubscribe:
		if s.fixedTopic != "" {
			return
		}
		s.registry.Unsubscribe(ctl.StreamID, s.conn)
		delete(s.subscribed, ctl.StreamID)

	case KindPing:
		if err := s.conn.WriteJSON(ctx, NewPong()); err != nil {
			slog.Debug("Failed to send pong", "error", err)
		}

	default:
		slog.Debug("Ignoring unrecognized control message")
	}
}
