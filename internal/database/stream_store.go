package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/neo-mofox/webui/internal/domain"
)

// StreamStore implements domain.StreamRepository on SurrealDB.
type StreamStore struct {
	db *surrealdb.DB
}

// NewStreamStore creates a stream repository backed by the given connection.
func NewStreamStore(db *surrealdb.DB) *StreamStore {
	return &StreamStore{db: db}
}

func (s *StreamStore) List(ctx context.Context, limit int) ([]domain.ChatStream, error) {
	query := "SELECT * FROM chat_stream ORDER BY last_message_time DESC LIMIT $limit"
	streams, err := Query[domain.ChatStream](ctx, s.db, query, map[string]any{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	return streams, nil
}

func (s *StreamStore) Get(ctx context.Context, streamID string) (*domain.ChatStream, error) {
	query := "SELECT * FROM chat_stream WHERE stream_id = $stream_id"
	stream, err := QueryOne[domain.ChatStream](ctx, s.db, query, map[string]any{"stream_id": streamID})
	if err != nil {
		return nil, fmt.Errorf("failed to get stream %s: %w", streamID, err)
	}
	if stream == nil {
		return nil, domain.ErrNotFound
	}
	return stream, nil
}

func (s *StreamStore) ListByUser(ctx context.Context, platform, userID string) ([]domain.ChatStream, error) {
	query := "SELECT * FROM chat_stream WHERE platform = $platform AND user_id = $user_id"
	params := map[string]any{"platform": platform, "user_id": userID}
	streams, err := Query[domain.ChatStream](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams for user %s: %w", userID, err)
	}
	return streams, nil
}

func (s *StreamStore) Delete(ctx context.Context, streamID string) error {
	query := "DELETE FROM chat_stream WHERE stream_id = $stream_id"
	if err := Execute(ctx, s.db, query, map[string]any{"stream_id": streamID}); err != nil {
		return fmt.Errorf("failed to delete stream %s: %w", streamID, err)
	}
	return nil
}

func (s *StreamStore) Count(ctx context.Context) (int, error) {
	return countTable(ctx, s.db, "chat_stream")
}
