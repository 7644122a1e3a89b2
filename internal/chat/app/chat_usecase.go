package app

import (
	"context"
	"strings"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/errs"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// ChatUseCase covers chat creation and member-scoped reads.
type ChatUseCase struct {
	chatRepo repository.ChatRepository
	msgRepo  repository.MessageRepository
}

// NewChatUseCase create ChatUseCase
func NewChatUseCase(chatRepo repository.ChatRepository, msgRepo repository.MessageRepository) *ChatUseCase {
	return &ChatUseCase{chatRepo: chatRepo, msgRepo: msgRepo}
}

// CreatePrivate opens a private chat between the caller and recipientID.
// An existing private chat between the pair is returned as-is.
func (uc *ChatUseCase) CreatePrivate(ctx context.Context, callerID, recipientID int64) (*domain.Chat, error) {
	if recipientID == callerID {
		return nil, errs.Validation("cannot open a private chat with yourself")
	}
	if recipientID <= 0 {
		return nil, errs.Validation("recipient_id is required")
	}
	return uc.chatRepo.CreatePrivateChat(ctx, callerID, recipientID)
}

// CreateGroup creates a group chat with the caller as admin.
func (uc *ChatUseCase) CreateGroup(ctx context.Context, callerID int64, name string, memberIDs []int64) (*domain.Chat, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("group name is required")
	}
	return uc.chatRepo.CreateGroupChat(ctx, callerID, name, memberIDs)
}

// MyChats lists the chats the caller belongs to, with members.
func (uc *ChatUseCase) MyChats(ctx context.Context, callerID int64) ([]domain.ChatWithMembers, error) {
	return uc.chatRepo.GetUserChats(ctx, callerID)
}

// GetChat returns one chat with its members. Non-members are denied.
func (uc *ChatUseCase) GetChat(ctx context.Context, chatID, callerID int64) (*domain.ChatWithMembers, error) {
	ok, err := uc.chatRepo.IsMember(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.AccessDenied("not a member of this chat")
	}

	chat, err := uc.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	members, err := uc.chatRepo.GetMembers(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return &domain.ChatWithMembers{Chat: *chat, Members: members}, nil
}

// History returns a chat's messages in chronological order. Non-members
// are denied; limit is clamped to [1, 100] with a default of 50.
func (uc *ChatUseCase) History(ctx context.Context, chatID, callerID int64, limit, offset int) ([]domain.MessageRecord, error) {
	ok, err := uc.chatRepo.IsMember(ctx, chatID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.AccessDenied("not a member of this chat")
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.msgRepo.ListByChat(ctx, chatID, limit, offset)
}
