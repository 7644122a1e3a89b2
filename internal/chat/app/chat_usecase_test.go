package app

import (
	"context"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestChatUseCase_CreatePrivate(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("creates or returns the pair's chat", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		chat := &domain.Chat{ID: 10, ChatType: domain.ChatTypePrivate}
		chatRepo.On("CreatePrivateChat", ctx, int64(1), int64(2)).Return(chat, nil).Once()

		uc := NewChatUseCase(chatRepo, new(MockMessageRepo))
		got, err := uc.CreatePrivate(ctx, 1, 2)

		assert.NoError(t, err)
		assert.Equal(t, chat, got)
	})

	t.Run("rejects a chat with oneself", func(t *testing.T) {
		uc := NewChatUseCase(new(MockChatRepo), new(MockMessageRepo))
		_, err := uc.CreatePrivate(ctx, 1, 1)
		assert.True(t, errs.Is(err, errs.KindValidation))
	})

	t.Run("rejects a missing recipient", func(t *testing.T) {
		uc := NewChatUseCase(new(MockChatRepo), new(MockMessageRepo))
		_, err := uc.CreatePrivate(ctx, 1, 0)
		assert.True(t, errs.Is(err, errs.KindValidation))
	})
}

func TestChatUseCase_CreateGroup(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("rejects a blank name", func(t *testing.T) {
		uc := NewChatUseCase(new(MockChatRepo), new(MockMessageRepo))
		_, err := uc.CreateGroup(ctx, 1, "   ", []int64{2, 3})
		assert.True(t, errs.Is(err, errs.KindValidation))
	})
}

func TestChatUseCase_History(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("clamps limit and offset", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		msgRepo := new(MockMessageRepo)

		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Times(3)
		msgRepo.On("ListByChat", ctx, int64(10), 50, 0).Return([]domain.MessageRecord{}, nil).Once()
		msgRepo.On("ListByChat", ctx, int64(10), 100, 0).Return([]domain.MessageRecord{}, nil).Once()
		msgRepo.On("ListByChat", ctx, int64(10), 5, 0).Return([]domain.MessageRecord{}, nil).Once()

		uc := NewChatUseCase(chatRepo, msgRepo)

		_, err := uc.History(ctx, 10, 1, 0, 0) // default
		assert.NoError(t, err)
		_, err = uc.History(ctx, 10, 1, 500, -3) // clamped
		assert.NoError(t, err)
		_, err = uc.History(ctx, 10, 1, 5, 0)
		assert.NoError(t, err)

		msgRepo.AssertExpectations(t)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		chatRepo.On("IsMember", ctx, int64(10), int64(9)).Return(false, nil).Once()

		uc := NewChatUseCase(chatRepo, new(MockMessageRepo))
		_, err := uc.History(ctx, 10, 9, 50, 0)
		assert.True(t, errs.Is(err, errs.KindAccessDenied))
	})
}

func TestChatUseCase_GetChat(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("member gets the chat with members", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		chat := &domain.Chat{ID: 10, ChatType: domain.ChatTypeGroup, Name: "team"}
		members := []domain.ChatMember{{ChatID: 10, UserID: 1, Username: "alice"}}

		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Once()
		chatRepo.On("FindByID", ctx, int64(10)).Return(chat, nil).Once()
		chatRepo.On("GetMembers", ctx, int64(10)).Return(members, nil).Once()

		uc := NewChatUseCase(chatRepo, new(MockMessageRepo))
		got, err := uc.GetChat(ctx, 10, 1)

		assert.NoError(t, err)
		assert.Equal(t, *chat, got.Chat)
		assert.Equal(t, members, got.Members)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		chatRepo.On("IsMember", ctx, int64(10), int64(9)).Return(false, nil).Once()

		uc := NewChatUseCase(chatRepo, new(MockMessageRepo))
		_, err := uc.GetChat(ctx, 10, 9)
		assert.True(t, errs.Is(err, errs.KindAccessDenied))
	})
}
