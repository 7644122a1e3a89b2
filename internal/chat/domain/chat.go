package domain

import "time"

// ChatType definition chat type
type ChatType string

const (
	// ChatTypePrivate definition chat 1 on 1
	ChatTypePrivate ChatType = "private"
	// ChatTypeGroup definition chat group
	ChatTypeGroup ChatType = "group"
)

// Chat definition chat room
type Chat struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	ChatType  ChatType  `json:"chat_type"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMember is one user's membership in a chat.
type ChatMember struct {
	ChatID   int64     `json:"chat_id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}

// ChatWithMembers is a chat plus its resolved member set.
type ChatWithMembers struct {
	Chat
	Members []ChatMember `json:"members"`
}
