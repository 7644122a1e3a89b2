package app

import (
	"context"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPresenceUseCase_EdgesFireOncePerUser(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	hub := NewHub()
	typing := NewTypingTracker()
	notifier := new(MockNotifier)

	uc := NewPresenceUseCase(hub, typing, notifier)

	phone := NewClient(1, "alice", newFakeConn(), 4)
	laptop := NewClient(1, "alice", newFakeConn(), 4)

	// Only the first connection announces online.
	notifier.On("BroadcastPresence", int64(1), domain.UserStatusOnline).Once()
	uc.Connect(phone)
	uc.Connect(laptop)
	notifier.AssertExpectations(t)

	// Only the last disconnect announces offline.
	uc.Disconnect(ctx, phone)
	notifier.AssertNotCalled(t, "BroadcastPresence", int64(1), domain.UserStatusOffline)

	notifier.On("BroadcastPresence", int64(1), domain.UserStatusOffline).Once()
	uc.Disconnect(ctx, laptop)
	notifier.AssertExpectations(t)
}

func TestPresenceUseCase_TypingClearedOnFullDisconnectOnly(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	hub := NewHub()
	typing := NewTypingTracker()
	notifier := new(MockNotifier)

	uc := NewPresenceUseCase(hub, typing, notifier)

	phone := NewClient(1, "alice", newFakeConn(), 4)
	laptop := NewClient(1, "alice", newFakeConn(), 4)

	notifier.On("BroadcastPresence", int64(1), domain.UserStatusOnline).Once()
	uc.Connect(phone)
	uc.Connect(laptop)

	typing.Set(10, 1, true)
	typing.Set(20, 1, true)

	// One device down: still typing everywhere.
	uc.Disconnect(ctx, phone)
	assert.ElementsMatch(t, []int64{1}, typing.TypingIn(10))

	// Last device down: offline plus a stopped-typing broadcast per chat.
	notifier.On("BroadcastPresence", int64(1), domain.UserStatusOffline).Once()
	stopped := func(chatID int64) interface{} {
		return mock.MatchedBy(func(e domain.WSEvent) bool {
			data, ok := e.Data.(domain.TypingIndicatorData)
			return e.Type == domain.EventTypingIndicator && ok &&
				data.ChatID == chatID && data.UserID == 1 && !data.IsTyping
		})
	}
	notifier.On("BroadcastToChat", ctx, int64(10), stopped(10), int64(0)).Return(nil).Once()
	notifier.On("BroadcastToChat", ctx, int64(20), stopped(20), int64(0)).Return(nil).Once()

	uc.Disconnect(ctx, laptop)

	assert.Empty(t, typing.TypingIn(10))
	assert.Empty(t, typing.TypingIn(20))
	notifier.AssertExpectations(t)
}

func TestTypingUseCase_SetTyping(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("member signal is tracked and broadcast to everyone", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		notifier := new(MockNotifier)
		tracker := NewTypingTracker()

		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Once()
		notifier.On("BroadcastToChat", ctx, int64(10), mock.MatchedBy(func(e domain.WSEvent) bool {
			data, ok := e.Data.(domain.TypingIndicatorData)
			return e.Type == domain.EventTypingIndicator && ok && data.UserID == 1 && data.IsTyping
		}), int64(0)).Return(nil).Once()

		uc := NewTypingUseCase(tracker, chatRepo, notifier)
		assert.NoError(t, uc.SetTyping(ctx, 10, 1, true))
		assert.ElementsMatch(t, []int64{1}, tracker.TypingIn(10))
	})

	t.Run("repeated signal re-broadcasts", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		notifier := new(MockNotifier)
		tracker := NewTypingTracker()

		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Twice()
		notifier.On("BroadcastToChat", ctx, int64(10), mock.Anything, int64(0)).Return(nil).Twice()

		uc := NewTypingUseCase(tracker, chatRepo, notifier)
		assert.NoError(t, uc.SetTyping(ctx, 10, 1, true))
		assert.NoError(t, uc.SetTyping(ctx, 10, 1, true))
		notifier.AssertExpectations(t)
	})

	t.Run("non-member signal is silently dropped", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		notifier := new(MockNotifier)
		tracker := NewTypingTracker()

		chatRepo.On("IsMember", ctx, int64(10), int64(9)).Return(false, nil).Once()

		uc := NewTypingUseCase(tracker, chatRepo, notifier)
		assert.NoError(t, uc.SetTyping(ctx, 10, 9, true))
		assert.Empty(t, tracker.TypingIn(10))
		notifier.AssertNotCalled(t, "BroadcastToChat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
