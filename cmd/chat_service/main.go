package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	chatapp "realtime_chat_service/internal/chat/app"
	chatrepo "realtime_chat_service/internal/chat/repository"
	"realtime_chat_service/internal/chat/router"
	memberapp "realtime_chat_service/internal/member/app"
	memberdomain "realtime_chat_service/internal/member/domain"
	memberrepo "realtime_chat_service/internal/member/repository"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	ctx := context.Background()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password,
		cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	db, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    connStr,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to database after retries",
			zap.String("address", fmt.Sprintf("%s:%d", cfg.PostgreSQL.Host, cfg.PostgreSQL.Port)),
			zap.Error(err),
		)
	}
	defer db.Close()

	if err := chatrepo.EnsureSchema(ctx, db); err != nil {
		logger.Log.Fatal("Failed to ensure schema", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	sessionRepo := database.NewRedisRepository[memberdomain.MemberSession](redisClient)

	memberRepo := memberrepo.NewMemberRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	msgRepo := chatrepo.NewMessageRepository(db)

	memberUC := memberapp.NewMemberUseCase(memberRepo, cfg.SessionTTL, sessionRepo)

	hub := chatapp.NewHub()
	typing := chatapp.NewTypingTracker()
	notifier := chatapp.NewChatBroadcaster(hub, chatRepo)

	chatUC := chatapp.NewChatUseCase(chatRepo, msgRepo)
	messageUC := chatapp.NewSendMessageUseCase(chatRepo, msgRepo, notifier, cfg.Websocket.MaxMessageLen)
	receiptUC := chatapp.NewReadReceiptUseCase(msgRepo, chatRepo, notifier)
	typingUC := chatapp.NewTypingUseCase(typing, chatRepo, notifier)
	presenceUC := chatapp.NewPresenceUseCase(hub, typing, notifier)

	memberHandler := memberapp.NewMemberHandler(memberUC)
	chatHandler := chatapp.NewChatHandler(chatUC, messageUC, receiptUC, presenceUC)
	wsHandler := chatapp.NewChatWebsocketHandler(presenceUC, messageUC, receiptUC, typingUC, memberUC, cfg.Websocket)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, memberHandler, chatHandler, wsHandler)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
