package domain

// ChatStream is one logical conversation the bot participates in: a group
// chat or a private session on some platform.
type ChatStream struct {
	StreamID           string  `json:"stream_id"`
	Platform           string  `json:"platform"`
	UserID             string  `json:"user_id"`
	GroupID            string  `json:"group_id"`
	ChatType           string  `json:"chat_type"`
	LastMessageTime    float64 `json:"last_message_time"`
	LastMessageContent string  `json:"last_message_content"`
}

// ChatMessage is a single message within a stream. Time is a Unix timestamp
// with fractional seconds, matching the bot core's storage format.
type ChatMessage struct {
	MessageID  string         `json:"message_id"`
	StreamID   string         `json:"stream_id"`
	Platform   string         `json:"platform"`
	ChatType   string         `json:"chat_type"`
	Time       float64        `json:"time"`
	Content    string         `json:"content"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	IsBot      bool           `json:"is_bot"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
