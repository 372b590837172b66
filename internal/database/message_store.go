package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/neo-mofox/webui/internal/domain"
)

// MessageStore implements domain.MessageRepository on SurrealDB.
type MessageStore struct {
	db *surrealdb.DB
}

// NewMessageStore creates a message repository backed by the given connection.
func NewMessageStore(db *surrealdb.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Recent(ctx context.Context, streamID string, limit int) ([]domain.ChatMessage, error) {
	// Latest N, then reversed so callers get ascending time order.
	query := "SELECT * FROM message WHERE stream_id = $stream_id ORDER BY time DESC LIMIT $limit"
	params := map[string]any{"stream_id": streamID, "limit": limit}
	messages, err := Query[domain.ChatMessage](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	reverse(messages)
	return messages, nil
}

func (s *MessageStore) Before(ctx context.Context, streamID string, before float64, limit int) ([]domain.ChatMessage, error) {
	query := "SELECT * FROM message WHERE stream_id = $stream_id AND time < $before ORDER BY time DESC LIMIT $limit"
	params := map[string]any{"stream_id": streamID, "before": before, "limit": limit}
	messages, err := Query[domain.ChatMessage](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages before %f: %w", before, err)
	}
	reverse(messages)
	return messages, nil
}

func (s *MessageStore) ByPlatform(ctx context.Context, platform, senderID string, limit int) ([]domain.ChatMessage, error) {
	query := "SELECT * FROM message WHERE platform = $platform ORDER BY time DESC LIMIT $limit"
	params := map[string]any{"platform": platform, "limit": limit}
	if senderID != "" {
		query = "SELECT * FROM message WHERE platform = $platform AND sender_id = $sender_id ORDER BY time DESC LIMIT $limit"
		params["sender_id"] = senderID
	}
	messages, err := Query[domain.ChatMessage](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) GetByMessageID(ctx context.Context, messageID string) (*domain.ChatMessage, error) {
	query := "SELECT * FROM message WHERE message_id = $message_id"
	msg, err := QueryOne[domain.ChatMessage](ctx, s.db, query, map[string]any{"message_id": messageID})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	if msg == nil {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func (s *MessageStore) Create(ctx context.Context, msg *domain.ChatMessage) error {
	if _, err := surrealdb.Create[domain.ChatMessage](ctx, s.db, "message", msg); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *MessageStore) DeleteByStream(ctx context.Context, streamID string) error {
	query := "DELETE FROM message WHERE stream_id = $stream_id"
	if err := Execute(ctx, s.db, query, map[string]any{"stream_id": streamID}); err != nil {
		return fmt.Errorf("failed to delete messages of stream %s: %w", streamID, err)
	}
	return nil
}

func (s *MessageStore) Since(ctx context.Context, since float64) ([]domain.ChatMessage, error) {
	query := "SELECT * FROM message WHERE time >= $since ORDER BY time ASC"
	messages, err := Query[domain.ChatMessage](ctx, s.db, query, map[string]any{"since": since})
	if err != nil {
		return nil, fmt.Errorf("failed to load messages since %f: %w", since, err)
	}
	return messages, nil
}

func (s *MessageStore) Count(ctx context.Context) (int, error) {
	return countTable(ctx, s.db, "message")
}

func reverse(messages []domain.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
