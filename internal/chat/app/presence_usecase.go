package app

import (
	"context"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"go.uber.org/zap"
)

// PresenceUseCase runs the connection lifecycle around the Hub: presence
// edge broadcasts on the 0↔1 boundary and typing cleanup on full
// disconnect. Intermediate connects and disconnects of a multi-device user
// emit nothing.
type PresenceUseCase struct {
	hub      *Hub
	typing   *TypingTracker
	notifier Notifier
}

// NewPresenceUseCase init presence use case
func NewPresenceUseCase(hub *Hub, typing *TypingTracker, notifier Notifier) *PresenceUseCase {
	return &PresenceUseCase{hub: hub, typing: typing, notifier: notifier}
}

// Connect registers the connection; the user's first connection announces
// them online to every other connected user.
func (p *PresenceUseCase) Connect(c *Client) {
	if first := p.hub.Register(c); first {
		p.notifier.BroadcastPresence(c.UserID, domain.UserStatusOnline)
	}
	logger.Log.Info("websocket connected",
		zap.Int64("user_id", c.UserID), zap.String("conn_id", c.ID))
}

// Disconnect unregisters the connection. Dropping to zero connections
// announces the user offline and clears them from every chat they were
// typing in, one stopped-typing broadcast per chat.
func (p *PresenceUseCase) Disconnect(ctx context.Context, c *Client) {
	last := p.hub.Unregister(c)
	c.Close()

	logger.Log.Info("websocket disconnected",
		zap.Int64("user_id", c.UserID), zap.String("conn_id", c.ID), zap.Bool("last", last))

	if !last {
		return
	}

	p.notifier.BroadcastPresence(c.UserID, domain.UserStatusOffline)

	for _, chatID := range p.typing.ClearUser(c.UserID) {
		if err := p.notifier.BroadcastToChat(ctx, chatID, domain.TypingIndicatorEvent(chatID, c.UserID, false), 0); err != nil {
			logger.Log.Error("typing cleanup broadcast",
				zap.Int64("chat_id", chatID), zap.Int64("user_id", c.UserID), zap.Error(err))
		}
	}
}

// OnlineUserIDs exposes the hub's presence snapshot for diagnostics/UI.
func (p *PresenceUseCase) OnlineUserIDs() []int64 {
	return p.hub.OnlineUserIDs()
}
