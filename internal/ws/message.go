package ws

import "encoding/json"

// ControlKind identifies the closed set of inbound control messages a client
// may send over a live connection. Anything that doesn't parse into one of
// these is KindUnknown and is ignored.
type ControlKind int

const (
	KindUnknown ControlKind = iota
	KindSubscribe
	KindUnsubscribe
	KindPing
)

// Control is a parsed inbound control message.
type Control struct {
	Kind     ControlKind
	StreamID string
}

// controlEnvelope mirrors the JSON shape clients send.
type controlEnvelope struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

// ParseControl validates a raw inbound text frame against the known message
// shapes. Malformed JSON or an unrecognized type yields KindUnknown; the
// caller ignores those without an error reply, keeping the connection open.
func ParseControl(raw []byte) Control {
	var env controlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Control{Kind: KindUnknown}
	}

	switch env.Type {
	case "subscribe":
		if env.StreamID == "" {
			return Control{Kind: KindUnknown}
		}
		return Control{Kind: KindSubscribe, StreamID: env.StreamID}
	case "unsubscribe":
		if env.StreamID == "" {
			return Control{Kind: KindUnknown}
		}
		return Control{Kind: KindUnsubscribe, StreamID: env.StreamID}
	case "ping":
		return Control{Kind: KindPing}
	default:
		return Control{Kind: KindUnknown}
	}
}

// Outbound frames.

// SubscribedFrame acknowledges a successful subscribe.
type SubscribedFrame struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

// NewSubscribed builds the ack frame for a subscribe control message.
func NewSubscribed(streamID string) SubscribedFrame {
	return SubscribedFrame{Type: "subscribed", StreamID: streamID}
}

// MessageFrame wraps a broadcast payload in the envelope clients expect.
type MessageFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewMessageFrame wraps data for delivery to topic subscribers.
func NewMessageFrame(data any) MessageFrame {
	return MessageFrame{Type: "message", Data: data}
}

// PongFrame answers a JSON ping.
type PongFrame struct {
	Type string `json:"type"`
}

// NewPong builds the reply to a JSON ping control message.
func NewPong() PongFrame {
	return PongFrame{Type: "pong"}
}
