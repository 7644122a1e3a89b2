package app

import "sync"

// TypingTracker is the ephemeral per-chat set of currently-typing users.
// Never persisted; entries drop on an explicit stop signal or when the
// user's last connection goes away.
type TypingTracker struct {
	mu     sync.Mutex
	typing map[int64]map[int64]struct{} // chat id -> typing user ids
}

// NewTypingTracker create an empty TypingTracker.
func NewTypingTracker() *TypingTracker {
	return &TypingTracker{typing: make(map[int64]map[int64]struct{})}
}

// Set adds or removes the user from the chat's typing set.
func (t *TypingTracker) Set(chatID, userID int64, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if isTyping {
		if t.typing[chatID] == nil {
			t.typing[chatID] = make(map[int64]struct{})
		}
		t.typing[chatID][userID] = struct{}{}
		return
	}

	if users, ok := t.typing[chatID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(t.typing, chatID)
		}
	}
}

// ClearUser removes the user from every chat's typing set and returns the
// ids of the chats they were typing in, for disconnect cleanup broadcasts.
func (t *TypingTracker) ClearUser(userID int64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cleared []int64
	for chatID, users := range t.typing {
		if _, ok := users[userID]; ok {
			delete(users, userID)
			if len(users) == 0 {
				delete(t.typing, chatID)
			}
			cleared = append(cleared, chatID)
		}
	}
	return cleared
}

// TypingIn returns a snapshot of the users typing in a chat.
func (t *TypingTracker) TypingIn(chatID int64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.typing[chatID]
	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	return ids
}
