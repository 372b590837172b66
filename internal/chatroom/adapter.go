package chatroom

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/neo-mofox/webui/internal/pubsub"
)

const (
	// BotUserID identifies bot replies in the chatroom transcript.
	BotUserID   = "mofox_bot"
	botNickname = "MoFox Bot"

	// messageCacheLimit bounds the reply-lookup cache. Oldest entries are
	// evicted first.
	messageCacheLimit = 1000
)

// Message is one chatroom transcript entry, either a user message or a bot
// reply referencing the message it answers.
type Message struct {
	MessageID   string   `json:"message_id"`
	UserID      string   `json:"user_id"`
	Nickname    string   `json:"nickname"`
	Content     string   `json:"content"`
	Images      []string `json:"images,omitempty"`
	Emojis      []string `json:"emojis,omitempty"`
	Timestamp   float64  `json:"timestamp"`
	MessageType string   `json:"message_type"`
	ReplyTo     string   `json:"reply_to,omitempty"`
}

// Adapter bridges the simulated chatroom to the bot core over the message
// bus. Outbound user messages are published on chatroom.message.out; bot
// replies arrive on chatroom.message.in and are queued until the UI polls
// them.
type Adapter struct {
	publisher pubsub.Publisher

	mu         sync.Mutex
	pending    []Message
	cache      map[string]Message
	cacheOrder []string
}

// NewAdapter creates a chatroom adapter publishing on the given bus.
func NewAdapter(publisher pubsub.Publisher) *Adapter {
	return &Adapter{
		publisher: publisher,
		cache:     make(map[string]Message),
	}
}

// Send caches an outbound user message and publishes it to the bot core.
func (a *Adapter) Send(ctx context.Context, msg Message) error {
	a.cacheMessage(msg)

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.publisher.Publish(ctx, pubsub.Message{
		Topic:   pubsub.TopicChatroomOut,
		Payload: payload,
	})
}

// Start begins consuming bot replies. It returns once the subscription is
// active.
func (a *Adapter) Start(ctx context.Context, subscriber pubsub.Subscriber) error {
	return subscriber.Subscribe(ctx, pubsub.TopicChatroomIn, func(ctx context.Context, msg pubsub.Message) error {
		reply, ok := a.parseReply(msg.Payload)
		if !ok {
			slog.Debug("Dropping malformed chatroom reply")
			return nil
		}
		a.mu.Lock()
		a.cacheLocked(reply)
		a.pending = append(a.pending, reply)
		a.mu.Unlock()
		slog.Debug("Queued bot reply", "message_id", reply.MessageID, "reply_to", reply.ReplyTo)
		return nil
	})
}

// replyEnvelope is the bot core's outbound message shape: identification,
// typed content segments and the original message being answered.
type replyEnvelope struct {
	MessageInfo struct {
		MessageID string  `json:"message_id"`
		Time      float64 `json:"time"`
	} `json:"message_info"`
	Segments []struct {
		Type string `json:"type"`
		Data string `json:"data"`
	} `json:"message_segment"`
	Metadata struct {
		Raw struct {
			MessageID string `json:"message_id"`
		} `json:"raw"`
	} `json:"metadata"`
}

func (a *Adapter) parseReply(payload []byte) (Message, bool) {
	var env replyEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Message{}, false
	}
	if env.MessageInfo.MessageID == "" {
		return Message{}, false
	}

	var texts, images, emojis []string
	for _, seg := range env.Segments {
		switch seg.Type {
		case "text":
			texts = append(texts, seg.Data)
		case "image":
			images = append(images, seg.Data)
		case "emoji":
			emojis = append(emojis, seg.Data)
		}
	}

	msgType := "text"
	if len(texts) == 0 && len(images) > 0 {
		msgType = "image"
	} else if len(texts) == 0 && len(emojis) > 0 {
		msgType = "emoji"
	}

	return Message{
		MessageID:   env.MessageInfo.MessageID,
		UserID:      BotUserID,
		Nickname:    botNickname,
		Content:     strings.Join(texts, ""),
		Images:      images,
		Emojis:      emojis,
		Timestamp:   env.MessageInfo.Time,
		MessageType: msgType,
		ReplyTo:     env.Metadata.Raw.MessageID,
	}, true
}

// Pending drains queued bot replies. With a user filter, only replies to that
// user's messages are returned; replies to other users go back on the queue
// in order.
func (a *Adapter) Pending(userID string) []Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	drained := a.pending
	a.pending = nil
	if userID == "" {
		return drained
	}

	var matched []Message
	for _, msg := range drained {
		original, ok := a.cache[msg.ReplyTo]
		if ok && original.UserID == userID {
			matched = append(matched, msg)
			continue
		}
		a.pending = append(a.pending, msg)
	}
	return matched
}

// Cached looks up a message by id in the reply cache.
func (a *Adapter) Cached(messageID string) (Message, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	msg, ok := a.cache[messageID]
	return msg, ok
}

func (a *Adapter) cacheMessage(msg Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cacheLocked(msg)
}

func (a *Adapter) cacheLocked(msg Message) {
	if _, exists := a.cache[msg.MessageID]; !exists {
		a.cacheOrder = append(a.cacheOrder, msg.MessageID)
	}
	a.cache[msg.MessageID] = msg
	for len(a.cacheOrder) > messageCacheLimit {
		oldest := a.cacheOrder[0]
		a.cacheOrder = a.cacheOrder[1:]
		delete(a.cache, oldest)
	}
}
