package app

import (
	"context"
	"encoding/json"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// Notifier is the event fan-out surface the use cases emit through.
type Notifier interface {
	// BroadcastToChat delivers an event to every current member of the
	// chat, skipping excludeUserID when non-zero.
	BroadcastToChat(ctx context.Context, chatID int64, event domain.WSEvent, excludeUserID int64) error
	// BroadcastPresence delivers a user_status event to every other
	// connected user.
	BroadcastPresence(userID int64, status string)
	// DeliverToUser delivers an event to all of one user's connections.
	DeliverToUser(userID int64, event domain.WSEvent)
}

// ChatBroadcaster resolves chat membership at broadcast time and fans
// events out through the Hub. Membership is re-resolved on every call so a
// membership change is visible to the very next broadcast.
type ChatBroadcaster struct {
	hub      *Hub
	chatRepo repository.ChatRepository
}

// NewChatBroadcaster create a ChatBroadcaster.
func NewChatBroadcaster(hub *Hub, chatRepo repository.ChatRepository) *ChatBroadcaster {
	return &ChatBroadcaster{hub: hub, chatRepo: chatRepo}
}

// BroadcastToChat delivers event to each member independently; one
// member's failed delivery never blocks the others. No atomicity across
// the fan-out: durable state is the source of truth, clients reconcile
// via history.
func (b *ChatBroadcaster) BroadcastToChat(ctx context.Context, chatID int64, event domain.WSEvent, excludeUserID int64) error {
	members, err := b.chatRepo.GetMembers(ctx, chatID)
	if err != nil {
		logger.Log.Error("resolve members for broadcast",
			zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	for _, member := range members {
		if excludeUserID != 0 && member.UserID == excludeUserID {
			continue
		}
		b.hub.Deliver(member.UserID, payload)
	}
	return nil
}

// BroadcastPresence tells every other online user about a presence edge.
func (b *ChatBroadcaster) BroadcastPresence(userID int64, status string) {
	payload, err := json.Marshal(domain.UserStatusEvent(userID, status))
	if err != nil {
		return
	}

	for _, onlineID := range b.hub.OnlineUserIDs() {
		if onlineID == userID {
			continue
		}
		b.hub.Deliver(onlineID, payload)
	}
}

// DeliverToUser sends event to all live connections of one user.
func (b *ChatBroadcaster) DeliverToUser(userID int64, event domain.WSEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.hub.Deliver(userID, payload)
}
