package app

import (
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ChatHandler handles chat REST requests.
type ChatHandler struct {
	chatUC    *ChatUseCase
	messageUC *SendMessageUseCase
	receiptUC *ReadReceiptUseCase
	presence  *PresenceUseCase
}

// NewChatHandler create a new ChatHandler
func NewChatHandler(chatUC *ChatUseCase, messageUC *SendMessageUseCase, receiptUC *ReadReceiptUseCase, presence *PresenceUseCase) *ChatHandler {
	return &ChatHandler{chatUC: chatUC, messageUC: messageUC, receiptUC: receiptUC, presence: presence}
}

func statusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case errs.KindAccessDenied:
		return fiber.StatusForbidden
	case errs.KindNotFound:
		return fiber.StatusNotFound
	case errs.KindValidation, errs.KindDuplicate:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func callerID(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(middlewares.TokenUserID).(int64)
	return id, ok
}

// CreatePrivate opens a private chat with another user.
func (h *ChatHandler) CreatePrivate(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	type request struct {
		RecipientID int64 `json:"recipient_id"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	chat, err := h.chatUC.CreatePrivate(c.Context(), userID, req.RecipientID)
	if err != nil {
		logger.Log.Error("create private chat failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// CreateGroup creates a group chat with the caller as admin.
func (h *ChatHandler) CreateGroup(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	type request struct {
		Name      string  `json:"name"`
		MemberIDs []int64 `json:"member_ids"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	chat, err := h.chatUC.CreateGroup(c.Context(), userID, req.Name, req.MemberIDs)
	if err != nil {
		logger.Log.Error("create group chat failed", zap.Int64("user_id", userID), zap.Error(err))
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(chat)
}

// MyChats lists the caller's chats.
func (h *ChatHandler) MyChats(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}

	chats, err := h.chatUC.MyChats(c.Context(), userID)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(chats)
}

// GetChat returns one chat with its members.
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}
	chatID, err := c.ParamsInt("chat_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	chat, err := h.chatUC.GetChat(c.Context(), int64(chatID), userID)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(chat)
}

// History returns a page of the chat's messages in chronological order.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}
	chatID, err := c.ParamsInt("chat_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid chat id"})
	}

	limit := c.QueryInt("limit", defaultHistoryLimit)
	offset := c.QueryInt("offset", 0)

	records, err := h.chatUC.History(c.Context(), int64(chatID), userID, limit, offset)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(records)
}

// Receipts lists who read a message and when.
func (h *ChatHandler) Receipts(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}
	messageID, err := c.ParamsInt("message_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid message id"})
	}

	receipts, err := h.receiptUC.Receipts(c.Context(), int64(messageID), userID)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(receipts)
}

// OnlineUsers lists user ids with at least one live connection.
func (h *ChatHandler) OnlineUsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"online": h.presence.OnlineUserIDs()})
}

// DebugSend sends a message through the same path as the websocket
// send_message action, for load scripts and manual checks.
func (h *ChatHandler) DebugSend(c *fiber.Ctx) error {
	userID, ok := callerID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
	}
	username, _ := c.Locals(middlewares.TokenUsername).(string)

	type request struct {
		ChatID          int64  `json:"chat_id"`
		Text            string `json:"text"`
		ClientMessageID string `json:"client_message_id"`
	}
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	rec, err := h.messageUC.Execute(c.Context(), req.ChatID, userID, username, req.Text, req.ClientMessageID)
	if err != nil {
		return c.Status(statusOf(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}
