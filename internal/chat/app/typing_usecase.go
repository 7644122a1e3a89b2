package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
)

// TypingUseCase applies typing signals and fans them out.
type TypingUseCase struct {
	typing   *TypingTracker
	chatRepo repository.ChatRepository
	notifier Notifier
}

// NewTypingUseCase init typing use case
func NewTypingUseCase(typing *TypingTracker, chatRepo repository.ChatRepository, notifier Notifier) *TypingUseCase {
	return &TypingUseCase{typing: typing, chatRepo: chatRepo, notifier: notifier}
}

// SetTyping records the signal and broadcasts it to the chat's members,
// the sender's own other connections included. Signals from non-members
// are silently ignored. Repeated identical signals re-broadcast every
// time; clients rely on that for liveness, so no state-change suppression.
func (uc *TypingUseCase) SetTyping(ctx context.Context, chatID, userID int64, isTyping bool) error {
	isMember, err := uc.chatRepo.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return nil
	}

	uc.typing.Set(chatID, userID, isTyping)

	return uc.notifier.BroadcastToChat(ctx, chatID, domain.TypingIndicatorEvent(chatID, userID, isTyping), 0)
}
