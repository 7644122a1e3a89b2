package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// ReadReceiptUseCase persists and deduplicates read events.
type ReadReceiptUseCase struct {
	msgRepo  repository.MessageRepository
	chatRepo repository.ChatRepository
	notifier Notifier
}

// NewReadReceiptUseCase init read receipt use case
func NewReadReceiptUseCase(
	msgRepo repository.MessageRepository,
	chatRepo repository.ChatRepository,
	notifier Notifier,
) *ReadReceiptUseCase {
	return &ReadReceiptUseCase{
		msgRepo:  msgRepo,
		chatRepo: chatRepo,
		notifier: notifier,
	}
}

// MarkRead records that readerID has seen the message. created is false
// when the receipt already existed ("already read") or when the reader is
// the message's own sender, which is a silent no-op. The message_read
// broadcast goes to the whole chat, sender included, and fires only when a
// receipt was actually created.
func (uc *ReadReceiptUseCase) MarkRead(ctx context.Context, messageID, readerID int64) (created bool, err error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return false, err
	}

	isMember, err := uc.chatRepo.IsMember(ctx, msg.ChatID, readerID)
	if err != nil {
		return false, err
	}
	if !isMember {
		return false, errs.AccessDenied("no access to this chat")
	}

	// A sender can never be its own reader.
	if msg.SenderID == readerID {
		return false, nil
	}

	created, err = uc.msgRepo.CreateReceipt(ctx, messageID, readerID)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if err := uc.notifier.BroadcastToChat(ctx, msg.ChatID, domain.MessageReadEvent(messageID, msg.ChatID, readerID), 0); err != nil {
		logger.Log.Error("message_read broadcast", zap.Int64("message_id", messageID), zap.Error(err))
	}

	return true, nil
}

// Receipts returns all receipts for a message, for audit/UI display.
// The caller must be a member of the message's chat.
func (uc *ReadReceiptUseCase) Receipts(ctx context.Context, messageID, callerID int64) ([]domain.ReceiptView, error) {
	msg, err := uc.msgRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	isMember, err := uc.chatRepo.IsMember(ctx, msg.ChatID, callerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, errs.AccessDenied("no access to this chat")
	}

	return uc.msgRepo.ListReceipts(ctx, messageID)
}
