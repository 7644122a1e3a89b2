package domain

import "time"

// Message is a persisted chat message. Rows are immutable after insert
// except for the IsRead flag, which flips when the first receipt arrives.
type Message struct {
	ID              int64
	ChatID          int64
	SenderID        int64
	Text            string
	Timestamp       time.Time
	IsRead          bool
	ClientMessageID string
}

// MessageReadReceipt records that a non-sender user has seen a message.
// At most one row exists per (message, reader).
type MessageReadReceipt struct {
	ID        int64
	MessageID int64
	UserID    int64
	ReadAt    time.Time
}

// ReceiptView is a receipt joined with the reader's identity, for audit/UI.
type ReceiptView struct {
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ReadAt    time.Time `json:"read_at"`
}

// MessageRecord is the canonical wire form of a message, carried by both
// new_message and message_sent events and by the history endpoint.
type MessageRecord struct {
	ID              int64  `json:"id"`
	ChatID          int64  `json:"chat_id"`
	SenderID        int64  `json:"sender_id"`
	SenderUsername  string `json:"sender_username"`
	Text            string `json:"text"`
	Timestamp       string `json:"timestamp"`
	IsRead          bool   `json:"is_read"`
	ClientMessageID string `json:"client_message_id"`
}

// Record builds the wire form of m.
func (m *Message) Record(senderUsername string) MessageRecord {
	return MessageRecord{
		ID:              m.ID,
		ChatID:          m.ChatID,
		SenderID:        m.SenderID,
		SenderUsername:  senderUsername,
		Text:            m.Text,
		Timestamp:       m.Timestamp.Format(time.RFC3339Nano),
		IsRead:          m.IsRead,
		ClientMessageID: m.ClientMessageID,
	}
}
