package app

import (
	"context"
	"strings"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// SendMessageUseCase ingests inbound messages: access check, idempotent
// persist, then event fan-out.
type SendMessageUseCase struct {
	chatRepo      repository.ChatRepository
	msgRepo       repository.MessageRepository
	notifier      Notifier
	maxMessageLen int
}

// NewSendMessageUseCase init create message use case
func NewSendMessageUseCase(
	chatRepo repository.ChatRepository,
	msgRepo repository.MessageRepository,
	notifier Notifier,
	maxMessageLen int,
) *SendMessageUseCase {
	if maxMessageLen <= 0 {
		maxMessageLen = 4096
	}
	return &SendMessageUseCase{
		chatRepo:      chatRepo,
		msgRepo:       msgRepo,
		notifier:      notifier,
		maxMessageLen: maxMessageLen,
	}
}

// Execute persists a message and emits the resulting events. When
// clientMessageID is non-empty and was seen before for this (sender, chat),
// the original record is returned unchanged and no new_message broadcast is
// repeated; the sender still gets the message_sent acknowledgment carrying
// the canonical id. Persistence always happens before any broadcast.
func (uc *SendMessageUseCase) Execute(ctx context.Context, chatID, senderID int64, senderUsername, text, clientMessageID string) (*domain.MessageRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("message text is empty")
	}
	if len([]rune(text)) > uc.maxMessageLen {
		return nil, errs.Validation("message text too long")
	}

	isMember, err := uc.chatRepo.IsMember(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, errs.AccessDenied("no access to this chat")
	}

	msg, created, err := uc.persist(ctx, chatID, senderID, text, clientMessageID)
	if err != nil {
		return nil, err
	}

	rec := msg.Record(senderUsername)

	if created {
		if err := uc.notifier.BroadcastToChat(ctx, chatID, domain.NewMessageEvent(rec), senderID); err != nil {
			// Broadcast is fire-and-forget after commit; the stored
			// message is already the source of truth.
			logger.Log.Error("new_message broadcast", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	} else {
		logger.Log.Debug("idempotent replay",
			zap.Int64("chat_id", chatID),
			zap.Int64("sender_id", senderID),
			zap.String("client_message_id", clientMessageID))
	}

	uc.notifier.DeliverToUser(senderID, domain.MessageSentEvent(rec))

	return &rec, nil
}

// persist inserts the message, honoring the store's uniqueness constraint
// on (sender, chat, client token) as the idempotent-replay path.
func (uc *SendMessageUseCase) persist(ctx context.Context, chatID, senderID int64, text, clientMessageID string) (*domain.Message, bool, error) {
	if clientMessageID != "" {
		existing, err := uc.msgRepo.FindByClientID(ctx, chatID, senderID, clientMessageID)
		if err == nil {
			return existing, false, nil
		}
		if !errs.Is(err, errs.KindNotFound) {
			return nil, false, err
		}
	}

	msg := &domain.Message{
		ChatID:          chatID,
		SenderID:        senderID,
		Text:            text,
		ClientMessageID: clientMessageID,
	}

	err := uc.msgRepo.Insert(ctx, msg)
	if err == nil {
		return msg, true, nil
	}

	// A concurrent retry may have won the insert race; the constraint
	// conflict means the canonical row already exists.
	if clientMessageID != "" && repository.IsUniqueViolation(err) {
		existing, findErr := uc.msgRepo.FindByClientID(ctx, chatID, senderID, clientMessageID)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}

	return nil, false, err
}
