package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
// It is intentionally simple to act as a wrapper for raw data.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "chat.message.event").
	Topic string
	// Payload contains the raw message data (JSON in practice).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the event bus.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the event bus.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages with
	// the handler. The subscription runs until the context is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Bus topics used by the WebUI service.
const (
	// TopicChatMessage carries message-received and message-sent events from
	// the bot core, destined for live chat WebSocket subscribers.
	TopicChatMessage = "chat.message.event"
	// TopicChatSend carries outbound messages from the WebUI to the bot core
	// for delivery on the target platform.
	TopicChatSend = "chat.message.send"
	// TopicLogEmitted carries individual log records for the realtime log view.
	TopicLogEmitted = "log.emitted"
	// TopicChatroomOut carries messages sent from the simulated chatroom to the bot core.
	TopicChatroomOut = "chatroom.message.out"
	// TopicChatroomIn carries bot replies back into the simulated chatroom.
	TopicChatroomIn = "chatroom.message.in"
)
