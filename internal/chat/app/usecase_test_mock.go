package app

import (
	"context"
	"errors"
	"sync"

	"realtime_chat_service/internal/chat/domain"

	"github.com/stretchr/testify/mock"
)

// MockChatRepo Mock ChatRepository
type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) CreatePrivateChat(ctx context.Context, creatorID, recipientID int64) (*domain.Chat, error) {
	args := m.Called(ctx, creatorID, recipientID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepo) CreateGroupChat(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*domain.Chat, error) {
	args := m.Called(ctx, creatorID, name, memberIDs)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepo) FindByID(ctx context.Context, chatID int64) (*domain.Chat, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepo) GetMembers(ctx context.Context, chatID int64) ([]domain.ChatMember, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatMember), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepo) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChatRepo) GetUserChats(ctx context.Context, userID int64) ([]domain.ChatWithMembers, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ChatWithMembers), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageRepo Mock MessageRepository
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) FindByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepo) FindByClientID(ctx context.Context, chatID, senderID int64, clientMessageID string) (*domain.Message, error) {
	args := m.Called(ctx, chatID, senderID, clientMessageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepo) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]domain.MessageRecord, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.MessageRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepo) CreateReceipt(ctx context.Context, messageID, readerID int64) (bool, error) {
	args := m.Called(ctx, messageID, readerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageRepo) ListReceipts(ctx context.Context, messageID int64) ([]domain.ReceiptView, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.ReceiptView), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) BroadcastToChat(ctx context.Context, chatID int64, event domain.WSEvent, excludeUserID int64) error {
	args := m.Called(ctx, chatID, event, excludeUserID)
	return args.Error(0)
}

func (m *MockNotifier) BroadcastPresence(userID int64, status string) {
	m.Called(userID, status)
}

func (m *MockNotifier) DeliverToUser(userID int64, event domain.WSEvent) {
	m.Called(userID, event)
}

// fakeConn implements ConnLike for hub tests; it records written frames
// and can be told to fail writes.
type fakeConn struct {
	mu        sync.Mutex
	frames    [][]byte
	failWrite bool
	closed    bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	return 0, nil, errors.New("not used")
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite {
		return errors.New("write failed")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.frames))
	copy(out, f.frames)
	return out
}

func (f *fakeConn) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
