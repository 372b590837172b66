package livechat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/neo-mofox/webui/internal/pubsub"
	"github.com/neo-mofox/webui/internal/ws"
)

// Bridge subscribes to chat message events on the bus and fans each one out
// to the WebSocket subscribers of its stream. Delivery is fire-and-forget:
// events without a usable stream_id are dropped with a log line, and
// broadcast failures are absorbed by the registry.
type Bridge struct {
	subscriber pubsub.Subscriber
	registry   *ws.Registry
}

// NewBridge creates the event-to-WebSocket bridge.
func NewBridge(subscriber pubsub.Subscriber, registry *ws.Registry) *Bridge {
	return &Bridge{subscriber: subscriber, registry: registry}
}

// Start begins consuming chat message events. It returns once the
// subscription is active.
func (b *Bridge) Start(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, pubsub.TopicChatMessage, func(ctx context.Context, msg pubsub.Message) error {
		var data map[string]any
		if err := json.Unmarshal(msg.Payload, &data); err != nil {
			slog.Warn("Dropping malformed chat event", "error", err)
			return nil
		}

		streamID, _ := data["stream_id"].(string)
		if streamID == "" {
			slog.Warn("Dropping chat event without stream_id")
			return nil
		}

		b.registry.Broadcast(ctx, streamID, ws.NewMessageFrame(data))
		return nil
	})
}
