package livechat

import "github.com/neo-mofox/webui/internal/domain"

// StreamInfo is the wire form of one chat stream entry.
type StreamInfo struct {
	StreamID           string  `json:"stream_id"`
	Platform           string  `json:"platform"`
	UserID             string  `json:"user_id"`
	GroupID            string  `json:"group_id"`
	ChatType           string  `json:"chat_type"`
	LastMessageTime    float64 `json:"last_message_time"`
	LastMessageContent string  `json:"last_message_content"`
	UnreadCount        int     `json:"unread_count"`
}

// MessageInfo is the wire form of one historical message.
type MessageInfo struct {
	MessageID  string         `json:"message_id"`
	StreamID   string         `json:"stream_id"`
	Platform   string         `json:"platform"`
	ChatType   string         `json:"chat_type"`
	Time       float64        `json:"time"`
	Content    string         `json:"content"`
	SenderID   string         `json:"sender_id"`
	SenderName string         `json:"sender_name"`
	IsSent     bool           `json:"is_sent"`
	IsBot      bool           `json:"is_bot"`
	IsWebUI    bool           `json:"is_webui"`
	Metadata   map[string]any `json:"metadata"`
}

// SendRequest asks the bot core to deliver a message on a stream.
type SendRequest struct {
	StreamID    string `json:"stream_id" validate:"required"`
	Content     string `json:"content" validate:"required"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image emoji"`
}

// SendResponse reports whether the bot core accepted the message.
type SendResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

func streamInfo(s domain.ChatStream) StreamInfo {
	return StreamInfo{
		StreamID:           s.StreamID,
		Platform:           s.Platform,
		UserID:             s.UserID,
		GroupID:            s.GroupID,
		ChatType:           s.ChatType,
		LastMessageTime:    s.LastMessageTime,
		LastMessageContent: s.LastMessageContent,
	}
}

func messageInfo(m domain.ChatMessage) MessageInfo {
	meta := m.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return MessageInfo{
		MessageID:  m.MessageID,
		StreamID:   m.StreamID,
		Platform:   m.Platform,
		ChatType:   m.ChatType,
		Time:       m.Time,
		Content:    m.Content,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		IsBot:      m.IsBot,
		Metadata:   meta,
	}
}
