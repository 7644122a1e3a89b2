package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// SessionChecker verifies a bearer token still maps to a live session, so
// a logged-out credential cannot open a connection.
type SessionChecker interface {
	CheckSession(ctx context.Context, userID int64, tokenStr string) bool
}

// ChatWebsocketHandler owns the websocket connection lifecycle and the
// inbound action dispatch.
type ChatWebsocketHandler struct {
	presenceUC *PresenceUseCase
	messageUC  *SendMessageUseCase
	receiptUC  *ReadReceiptUseCase
	typingUC   *TypingUseCase
	sessions   SessionChecker
	wsCfg      config.WebsocketConfig
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	presenceUC *PresenceUseCase,
	messageUC *SendMessageUseCase,
	receiptUC *ReadReceiptUseCase,
	typingUC *TypingUseCase,
	sessions SessionChecker,
	wsCfg config.WebsocketConfig,
) *ChatWebsocketHandler {
	if wsCfg.HeartbeatInterval <= 0 {
		wsCfg.HeartbeatInterval = 30 * time.Second
	}
	if wsCfg.IdleTimeout <= 0 {
		wsCfg.IdleTimeout = 5 * time.Minute
	}
	return &ChatWebsocketHandler{
		presenceUC: presenceUC,
		messageUC:  messageUC,
		receiptUC:  receiptUC,
		typingUC:   typingUC,
		sessions:   sessions,
		wsCfg:      wsCfg,
	}
}

// HandleConnection is the entry point for one websocket connection. The
// identity was parsed into locals before the upgrade; a missing or revoked
// credential closes the connection with a policy-violation status before
// any application event is processed.
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	userID, uok := conn.Locals(middlewares.TokenUserID).(int64)
	username, nok := conn.Locals(middlewares.TokenUsername).(string)
	rawToken, tok := conn.Locals(middlewares.TokenRaw).(string)

	if !uok || !nok || !tok {
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, "invalid or missing token")
		return
	}
	if h.sessions != nil && !h.sessions.CheckSession(ctx, userID, rawToken) {
		closeWebSocketConnection(conn, websocket.ClosePolicyViolation, "session revoked")
		return
	}

	client := NewClient(userID, username, conn, h.wsCfg.SendBuffer)
	go client.WritePump()

	h.presenceUC.Connect(client)

	ticker := time.NewTicker(h.wsCfg.HeartbeatInterval)
	ctxClose, cancel := context.WithCancel(ctx)

	defer func() {
		ticker.Stop()
		cancel()
		h.presenceUC.Disconnect(ctx, client)
	}()

	conn.SetReadDeadline(time.Now().Add(h.wsCfg.IdleTimeout))
	conn.SetPongHandler(func(appData string) error {
		return conn.SetReadDeadline(time.Now().Add(h.wsCfg.IdleTimeout))
	})

	// Heartbeat: ping on a fixed cadence; a peer that stops answering runs
	// into the read deadline and is cleaned up as a normal disconnect.
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("websocket closed by peer", zap.Int64("user_id", userID))
			} else {
				logger.Log.Errorf("websocket read error:", err, zap.Int64("user_id", userID))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.wsCfg.IdleTimeout))

		if mt != websocket.TextMessage {
			continue
		}
		h.dispatch(ctx, client, message)
	}
}

// dispatch handles one inbound envelope. Every failure is reported back on
// the same connection as an error event; nothing here may terminate the
// connection or other connections' processing.
func (h *ChatWebsocketHandler) dispatch(ctx context.Context, client *Client, message []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("panic in websocket dispatch",
				zap.Int64("user_id", client.UserID), zap.Any("panic", r))
			h.sendEvent(client, domain.ErrorEvent("internal error"))
		}
	}()

	var req domain.WSRequest
	if err := json.Unmarshal(message, &req); err != nil {
		h.sendEvent(client, domain.ErrorEvent("invalid JSON format"))
		return
	}

	switch domain.Action(req.Action) {
	case domain.ActionSendMessage:
		var data domain.SendMessageData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			h.sendEvent(client, domain.ErrorEvent("invalid send_message payload"))
			return
		}
		_, err := h.messageUC.Execute(ctx, data.ChatID, client.UserID, client.Username, data.Text, data.ClientMessageID)
		if err != nil {
			h.sendError(client, req.Action, err)
		}

	case domain.ActionMarkRead:
		var data domain.MarkReadData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			h.sendEvent(client, domain.ErrorEvent("invalid mark_read payload"))
			return
		}
		_, err := h.receiptUC.MarkRead(ctx, data.MessageID, client.UserID)
		if err != nil {
			h.sendError(client, req.Action, err)
		}

	case domain.ActionTyping:
		var data domain.TypingData
		if err := json.Unmarshal(req.Data, &data); err != nil {
			h.sendEvent(client, domain.ErrorEvent("invalid typing payload"))
			return
		}
		if err := h.typingUC.SetTyping(ctx, data.ChatID, client.UserID, data.IsTyping); err != nil {
			h.sendError(client, req.Action, err)
		}

	case domain.ActionPing:
		h.sendEvent(client, domain.PongEvent())

	default:
		h.sendEvent(client, domain.ErrorEvent(fmt.Sprintf("unknown action: %s", req.Action)))
	}
}

// sendError maps a classified failure to an error event on the client's
// own connection. Unexpected kinds are logged and reported generically.
func (h *ChatWebsocketHandler) sendError(client *Client, action string, err error) {
	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		logger.Log.Error("websocket action failed",
			zap.Int64("user_id", client.UserID), zap.String("action", action), zap.Error(err))
		h.sendEvent(client, domain.ErrorEvent(fmt.Sprintf("failed to handle %s", action)))
		return
	}
	h.sendEvent(client, domain.ErrorEvent(err.Error()))
}

func (h *ChatWebsocketHandler) sendEvent(client *Client, event domain.WSEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorf("marshal event error:", err)
		return
	}
	if err := client.Send(payload); err != nil {
		client.Close()
	}
}

func closeWebSocketConnection(conn *websocket.Conn, code int, reason string) {
	if err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)); err != nil {
		logger.Log.Errorf("failed to send CloseMessage:", err)
	}
	conn.Close()
}
