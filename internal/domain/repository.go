package domain

import "context"

// StreamRepository provides access to the bot core's chat stream records.
type StreamRepository interface {
	// List returns streams ordered by last message time, newest first.
	List(ctx context.Context, limit int) ([]ChatStream, error)
	Get(ctx context.Context, streamID string) (*ChatStream, error)
	// ListByUser returns the streams a given user owns on a platform.
	ListByUser(ctx context.Context, platform, userID string) ([]ChatStream, error)
	Delete(ctx context.Context, streamID string) error
	Count(ctx context.Context) (int, error)
}

// MessageRepository provides access to stored chat messages.
type MessageRepository interface {
	// Recent returns the latest messages of a stream in ascending time order.
	Recent(ctx context.Context, streamID string, limit int) ([]ChatMessage, error)
	// Before returns messages older than the given timestamp, for paging.
	Before(ctx context.Context, streamID string, before float64, limit int) ([]ChatMessage, error)
	// ByPlatform returns the latest messages on a platform, optionally
	// restricted to one sender.
	ByPlatform(ctx context.Context, platform, senderID string, limit int) ([]ChatMessage, error)
	GetByMessageID(ctx context.Context, messageID string) (*ChatMessage, error)
	Create(ctx context.Context, msg *ChatMessage) error
	DeleteByStream(ctx context.Context, streamID string) error
	// Since returns all messages newer than the given timestamp.
	Since(ctx context.Context, since float64) ([]ChatMessage, error)
	Count(ctx context.Context) (int, error)
}

// PersonRepository provides access to the bot's per-user impression records.
type PersonRepository interface {
	Get(ctx context.Context, platform, userID string) (*Person, error)
	Create(ctx context.Context, person *Person) error
	// Update applies a partial update; only the provided fields change.
	Update(ctx context.Context, platform, userID string, updates map[string]any) error
	Delete(ctx context.Context, platform, userID string) error
	// ListOthers returns persons from every platform except the given one.
	ListOthers(ctx context.Context, excludePlatform string) ([]Person, error)
	Count(ctx context.Context, platform string) (int, error)
}
