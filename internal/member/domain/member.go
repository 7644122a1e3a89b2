package domain

import (
	"time"

	"realtime_chat_service/pkg/encrypt"
)

// Member definition a registered user.
type Member struct {
	ID             int64
	Username       string
	Email          string
	HashedPassword string
	IsActive       bool
}

// MemberQuery narrows a member lookup; nil fields are ignored.
type MemberQuery struct {
	ID       *int64
	Username *string
	Email    *string
}

// IsPasswordMatch checks the given password against the stored hash.
func (m *Member) IsPasswordMatch(password string) error {
	return encrypt.CheckPassword(m.HashedPassword, password)
}

// MemberSession is the redis-backed session created at login.
type MemberSession struct {
	Token        string    `json:"token"`
	UserID       int64     `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiredAt    time.Time `json:"expired_at"`
}

// IsExpired reports whether the session passed its deadline.
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}
