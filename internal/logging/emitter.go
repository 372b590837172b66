package logging

import (
	"context"
	"log/slog"
	"time"
)

// Entry is the wire form of a single log record pushed to the WebUI.
type Entry struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	LoggerName string `json:"logger_name"`
	Event      string `json:"event"`
}

// EmitFunc receives every log record that passes through the emit handler.
// Implementations must not block; the handler calls it inline.
type EmitFunc func(Entry)

// EmitHandler wraps another slog.Handler and forwards each record to an
// EmitFunc in addition to normal output. The server wires the EmitFunc to the
// realtime log broadcast so connected WebUI clients see logs as they happen.
type EmitHandler struct {
	next slog.Handler
	emit EmitFunc
	// loggerName is picked up from a "logger" attribute added via With().
	loggerName string
}

// NewEmitHandler creates a handler that tees records to emit after passing
// them to next.
func NewEmitHandler(next slog.Handler, emit EmitFunc) *EmitHandler {
	return &EmitHandler{next: next, emit: emit}
}

func (h *EmitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *EmitHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := Entry{
		Timestamp:  r.Time.Format(time.RFC3339Nano),
		Level:      r.Level.String(),
		LoggerName: h.loggerName,
		Event:      r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "logger" {
			entry.LoggerName = a.Value.String()
			return false
		}
		return true
	})
	h.emit(entry)
	return h.next.Handle(ctx, r)
}

func (h *EmitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &EmitHandler{next: h.next.WithAttrs(attrs), emit: h.emit, loggerName: h.loggerName}
	for _, a := range attrs {
		if a.Key == "logger" {
			clone.loggerName = a.Value.String()
		}
	}
	return clone
}

func (h *EmitHandler) WithGroup(name string) slog.Handler {
	return &EmitHandler{next: h.next.WithGroup(name), emit: h.emit, loggerName: h.loggerName}
}
