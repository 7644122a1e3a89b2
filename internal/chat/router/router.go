package router

import (
	"context"

	chatapp "realtime_chat_service/internal/chat/app"
	memberapp "realtime_chat_service/internal/member/app"
	"realtime_chat_service/pkg/logger"
	"realtime_chat_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes wires the REST surface and the websocket endpoint.
func RegisterRoutes(r *fiber.App, memberHandler *memberapp.MemberHandler, chatHandler *chatapp.ChatHandler, chatWebsocket *chatapp.ChatWebsocketHandler) {
	r.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	member := r.Group("/member")
	member.Post("/register", memberHandler.Register)
	member.Post("/login", memberHandler.Login)
	member.Post("/logout", middlewares.JWTMiddleware(), memberHandler.Logout)
	member.Get("/me", middlewares.JWTMiddleware(), memberHandler.Me)
	member.Get("/users", middlewares.JWTMiddleware(), memberHandler.Users)

	chats := r.Group("/chats", middlewares.JWTMiddleware())
	chats.Post("/private", chatHandler.CreatePrivate)
	chats.Post("/group", chatHandler.CreateGroup)
	chats.Get("/", chatHandler.MyChats)
	chats.Get("/online", chatHandler.OnlineUsers)
	chats.Get("/:chat_id", chatHandler.GetChat)
	chats.Get("/:chat_id/messages", chatHandler.History)

	messages := r.Group("/messages", middlewares.JWTMiddleware())
	messages.Get("/:message_id/receipts", chatHandler.Receipts)

	r.Post("/debug/send", middlewares.JWTMiddleware(), chatHandler.DebugSend)
	r.Post("/debug", func(c *fiber.Ctx) error {
		type request struct {
			Debug bool `json:"debug"`
		}
		var req request
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		logger.Log.SetDebugMode(req.Debug)
		return c.JSON(fiber.Map{"debug": req.Debug})
	})

	// The websocket upgrade uses the permissive variant: a bad token is
	// not rejected here, the handler closes with a policy-violation
	// status instead of an HTTP error.
	r.Get("/ws", middlewares.WebsocketAuth(), websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
