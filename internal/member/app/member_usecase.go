package app

import (
	"context"
	"fmt"
	"time"

	"realtime_chat_service/internal/member/domain"
	"realtime_chat_service/internal/member/repository"
	"realtime_chat_service/pkg/config"
	"realtime_chat_service/pkg/database"
	"realtime_chat_service/pkg/encrypt"
	"realtime_chat_service/pkg/errs"
	"realtime_chat_service/pkg/logger"
	token "realtime_chat_service/pkg/token"

	"go.uber.org/zap"
)

// MemberUseCase is the identity surface: registration, login sessions and
// session revocation checks used by the websocket handshake.
type MemberUseCase interface {
	Register(ctx context.Context, username, email, password string) (*domain.Member, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, tokenStr string) error
	FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
	CheckSession(ctx context.Context, userID int64, tokenStr string) bool
}

type memberUseCase struct {
	memberRepo repository.MemberRepository
	sessionTTL time.Duration
	redisRepo  database.RedisRepository[domain.MemberSession]
}

// NewMemberUseCase create a new MemberUseCase
func NewMemberUseCase(memberRepo repository.MemberRepository,
	sessionTTL time.Duration,
	redisRepo database.RedisRepository[domain.MemberSession],
) MemberUseCase {
	return &memberUseCase{
		memberRepo: memberRepo,
		sessionTTL: sessionTTL,
		redisRepo:  redisRepo,
	}
}

func sessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// Register creates a user after checking the username and email are free.
func (m *memberUseCase) Register(ctx context.Context, username, email, password string) (*domain.Member, error) {
	if username == "" || email == "" {
		return nil, errs.Validation("username and email are required")
	}
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Username: &username}); err == nil {
		return nil, errs.New(errs.KindDuplicate, "username already exists")
	}
	if _, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Email: &email}); err == nil {
		return nil, errs.New(errs.KindDuplicate, "email already exists")
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, "password rejected", err)
	}

	member := domain.Member{
		Username:       username,
		Email:          email,
		HashedPassword: pw,
		IsActive:       true,
	}

	if err := m.memberRepo.CreateUser(ctx, &member); err != nil {
		return nil, err
	}

	logger.Log.Info("member registered", zap.Int64("user_id", member.ID), zap.String("username", username))
	return &member, nil
}

// FindMember looks a member up by any of the query fields.
func (m *memberUseCase) FindMember(ctx context.Context, param *domain.MemberQuery) (*domain.Member, error) {
	return m.memberRepo.FindByMember(ctx, param)
}

// ListMembers returns all active members.
func (m *memberUseCase) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return m.memberRepo.ListActive(ctx)
}

// Login verifies credentials, issues a JWT and stores the session in redis.
func (m *memberUseCase) Login(ctx context.Context, username, password string) (string, error) {
	member, err := m.memberRepo.FindByMember(ctx, &domain.MemberQuery{Username: &username})
	if err != nil {
		return "", errs.Unauthenticated("invalid credentials")
	}

	if err = member.IsPasswordMatch(password); err != nil {
		return "", errs.Unauthenticated("invalid credentials")
	}

	t, err := token.GenerateJWT(member.ID, member.Username, config.EnvConfig.ChatService)
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.MemberSession{
		Token:        t,
		UserID:       member.ID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiredAt:    now.Add(m.sessionTTL),
	}

	if err := m.redisRepo.Set(ctx, sessionKey(member.ID), session, m.sessionTTL); err != nil {
		return "", err
	}

	logger.Log.Info("member login", zap.Int64("user_id", member.ID))
	return t, nil
}

// Logout revokes the caller's session.
func (m *memberUseCase) Logout(ctx context.Context, tokenStr string) error {
	claims, err := token.ParseJWT(tokenStr)
	if err != nil {
		logger.Log.Error("logout token parse", zap.Error(err))
		return errs.Unauthenticated("invalid token")
	}

	return m.redisRepo.Del(ctx, sessionKey(claims.UserID))
}

// CheckSession reports whether the token still matches a live session.
// A logged-out or expired session means the credential is revoked.
func (m *memberUseCase) CheckSession(ctx context.Context, userID int64, tokenStr string) bool {
	session, err := m.redisRepo.Get(ctx, sessionKey(userID))
	if err != nil {
		return false
	}
	return session.Token == tokenStr && !session.IsExpired()
}
