package app

import (
	"context"
	"encoding/json"
	"testing"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestHandler(chatRepo *MockChatRepo, msgRepo *MockMessageRepo, notifier *MockNotifier) *ChatWebsocketHandler {
	hub := NewHub()
	typing := NewTypingTracker()
	return NewChatWebsocketHandler(
		NewPresenceUseCase(hub, typing, notifier),
		NewSendMessageUseCase(chatRepo, msgRepo, notifier, 0),
		NewReadReceiptUseCase(msgRepo, chatRepo, notifier),
		NewTypingUseCase(typing, chatRepo, notifier),
		nil,
		config.WebsocketConfig{},
	)
}

func newTestClient() (*Client, *fakeConn) {
	conn := newFakeConn()
	client := NewClient(1, "alice", conn, 8)
	go client.WritePump()
	return client, conn
}

func decodeEvent(t *testing.T, frame []byte) domain.WSEvent {
	t.Helper()
	var event domain.WSEvent
	assert.NoError(t, json.Unmarshal(frame, &event))
	return event
}

func TestWebsocketDispatch_MalformedJSON(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	h := newTestHandler(new(MockChatRepo), new(MockMessageRepo), new(MockNotifier))
	client, conn := newTestClient()

	h.dispatch(ctx, client, []byte(`{not json`))

	event := decodeEvent(t, waitForFrames(t, conn, 1)[0])
	assert.Equal(t, domain.EventError, event.Type)
	assert.Equal(t, "invalid JSON format", event.Message)

	// The connection stays usable after a bad frame.
	h.dispatch(ctx, client, []byte(`{"action":"ping"}`))
	event = decodeEvent(t, waitForFrames(t, conn, 2)[1])
	assert.Equal(t, domain.EventPong, event.Type)
}

func TestWebsocketDispatch_UnknownAction(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	h := newTestHandler(new(MockChatRepo), new(MockMessageRepo), new(MockNotifier))
	client, conn := newTestClient()

	h.dispatch(ctx, client, []byte(`{"action":"dance","data":{}}`))

	event := decodeEvent(t, waitForFrames(t, conn, 1)[0])
	assert.Equal(t, domain.EventError, event.Type)
	assert.Equal(t, "unknown action: dance", event.Message)
}

func TestWebsocketDispatch_Ping(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	h := newTestHandler(new(MockChatRepo), new(MockMessageRepo), new(MockNotifier))
	client, conn := newTestClient()

	h.dispatch(ctx, client, []byte(`{"action":"ping"}`))

	event := decodeEvent(t, waitForFrames(t, conn, 1)[0])
	assert.Equal(t, domain.EventPong, event.Type)
}

func TestWebsocketDispatch_SendMessage(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("valid message flows through to the notifier", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		msgRepo := new(MockMessageRepo)
		notifier := new(MockNotifier)

		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Once()
		msgRepo.On("FindByClientID", ctx, int64(10), int64(1), "tok-1").
			Return(nil, errs.NotFound("message not found")).Once()
		msgRepo.On("Insert", ctx, mock.Anything).Return(nil).Once()
		notifier.On("BroadcastToChat", ctx, int64(10), mock.Anything, int64(1)).Return(nil).Once()
		notifier.On("DeliverToUser", int64(1), mock.Anything).Once()

		h := newTestHandler(chatRepo, msgRepo, notifier)
		client, _ := newTestClient()

		h.dispatch(ctx, client, []byte(`{"action":"send_message","data":{"chat_id":10,"text":"hi","client_message_id":"tok-1"}}`))

		notifier.AssertExpectations(t)
	})

	t.Run("denied sender gets an error event", func(t *testing.T) {
		chatRepo := new(MockChatRepo)
		chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(false, nil).Once()

		h := newTestHandler(chatRepo, new(MockMessageRepo), new(MockNotifier))
		client, conn := newTestClient()

		h.dispatch(ctx, client, []byte(`{"action":"send_message","data":{"chat_id":10,"text":"hi"}}`))

		event := decodeEvent(t, waitForFrames(t, conn, 1)[0])
		assert.Equal(t, domain.EventError, event.Type)
		assert.Equal(t, "no access to this chat", event.Message)
	})

	t.Run("bad payload gets an error event", func(t *testing.T) {
		h := newTestHandler(new(MockChatRepo), new(MockMessageRepo), new(MockNotifier))
		client, conn := newTestClient()

		h.dispatch(ctx, client, []byte(`{"action":"send_message","data":"nope"}`))

		event := decodeEvent(t, waitForFrames(t, conn, 1)[0])
		assert.Equal(t, domain.EventError, event.Type)
		assert.Equal(t, "invalid send_message payload", event.Message)
	})
}

func TestWebsocketDispatch_MarkRead(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	chatRepo := new(MockChatRepo)
	msgRepo := new(MockMessageRepo)
	notifier := new(MockNotifier)

	msg := &domain.Message{ID: 5, ChatID: 10, SenderID: 2}
	msgRepo.On("FindByID", ctx, int64(5)).Return(msg, nil).Once()
	chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Once()
	msgRepo.On("CreateReceipt", ctx, int64(5), int64(1)).Return(true, nil).Once()
	notifier.On("BroadcastToChat", ctx, int64(10), mock.Anything, int64(0)).Return(nil).Once()

	h := newTestHandler(chatRepo, msgRepo, notifier)
	client, _ := newTestClient()

	h.dispatch(ctx, client, []byte(`{"action":"mark_read","data":{"message_id":5}}`))

	notifier.AssertExpectations(t)
	msgRepo.AssertExpectations(t)
}

func TestWebsocketDispatch_Typing(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	chatRepo := new(MockChatRepo)
	notifier := new(MockNotifier)

	chatRepo.On("IsMember", ctx, int64(10), int64(1)).Return(true, nil).Once()
	notifier.On("BroadcastToChat", ctx, int64(10), mock.MatchedBy(func(e domain.WSEvent) bool {
		data, ok := e.Data.(domain.TypingIndicatorData)
		return e.Type == domain.EventTypingIndicator && ok && data.IsTyping
	}), int64(0)).Return(nil).Once()

	h := newTestHandler(chatRepo, new(MockMessageRepo), notifier)
	client, _ := newTestClient()

	h.dispatch(ctx, client, []byte(`{"action":"typing","data":{"chat_id":10,"is_typing":true}}`))

	notifier.AssertExpectations(t)
}
