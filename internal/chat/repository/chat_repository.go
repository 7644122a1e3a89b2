package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/errs"
)

// uniqueViolation is the SQLSTATE the store reports on a uniqueness conflict.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a duplicate-key conflict.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ChatRepository resolves chat membership and manages chat creation.
// Membership reads are the Broadcast fan-out's source of truth and are
// re-resolved on every broadcast, never cached.
type ChatRepository interface {
	CreatePrivateChat(ctx context.Context, creatorID, recipientID int64) (*domain.Chat, error)
	CreateGroupChat(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*domain.Chat, error)
	FindByID(ctx context.Context, chatID int64) (*domain.Chat, error)
	GetMembers(ctx context.Context, chatID int64) ([]domain.ChatMember, error)
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
	GetUserChats(ctx context.Context, userID int64) ([]domain.ChatWithMembers, error)
}

type chatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository create a ChatRepository
func NewChatRepository(db *pgxpool.Pool) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreatePrivateChat(ctx context.Context, creatorID, recipientID int64) (*domain.Chat, error) {
	// A private chat between two users is unique; return the existing one.
	existing, err := r.findPrivateChatBetween(ctx, creatorID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	chat := domain.Chat{ChatType: domain.ChatTypePrivate, CreatorID: creatorID}
	row := tx.QueryRow(ctx,
		"INSERT INTO chats(chat_type, creator_id) VALUES ($1, $2) RETURNING id, created_at",
		chat.ChatType, creatorID)
	if err := row.Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return nil, err
	}

	batchMembers := [][2]interface{}{{creatorID, true}, {recipientID, false}}
	for _, m := range batchMembers {
		if _, err := tx.Exec(ctx,
			"INSERT INTO chat_members(chat_id, user_id, is_admin) VALUES ($1, $2, $3)",
			chat.ID, m[0], m[1]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) CreateGroupChat(ctx context.Context, creatorID int64, name string, memberIDs []int64) (*domain.Chat, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	chat := domain.Chat{Name: name, ChatType: domain.ChatTypeGroup, CreatorID: creatorID}
	row := tx.QueryRow(ctx,
		"INSERT INTO chats(name, chat_type, creator_id) VALUES ($1, $2, $3) RETURNING id, created_at",
		name, chat.ChatType, creatorID)
	if err := row.Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO chat_members(chat_id, user_id, is_admin) VALUES ($1, $2, true)",
		chat.ID, creatorID); err != nil {
		return nil, err
	}
	for _, memberID := range memberIDs {
		if memberID == creatorID {
			continue
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO chat_members(chat_id, user_id, is_admin) VALUES ($1, $2, false) ON CONFLICT DO NOTHING",
			chat.ID, memberID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByID(ctx context.Context, chatID int64) (*domain.Chat, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, COALESCE(name, ''), chat_type, creator_id, created_at FROM chats WHERE id = $1", chatID)

	var chat domain.Chat
	if err := row.Scan(&chat.ID, &chat.Name, &chat.ChatType, &chat.CreatorID, &chat.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("chat not found")
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) GetMembers(ctx context.Context, chatID int64) ([]domain.ChatMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cm.chat_id, cm.user_id, u.username, cm.is_admin, cm.joined_at
		FROM chat_members cm
		JOIN users u ON u.id = cm.user_id
		WHERE cm.chat_id = $1`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.ChatMember
	for rows.Next() {
		var m domain.ChatMember
		if err := rows.Scan(&m.ChatID, &m.UserID, &m.Username, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)",
		chatID, userID).Scan(&exists)
	return exists, err
}

func (r *chatRepository) GetUserChats(ctx context.Context, userID int64) ([]domain.ChatWithMembers, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, COALESCE(c.name, ''), c.chat_type, c.creator_id, c.created_at
		FROM chats c
		JOIN chat_members cm ON cm.chat_id = c.id
		WHERE cm.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []domain.ChatWithMembers
	for rows.Next() {
		var c domain.ChatWithMembers
		if err := rows.Scan(&c.ID, &c.Name, &c.ChatType, &c.CreatorID, &c.CreatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chats {
		members, err := r.GetMembers(ctx, chats[i].ID)
		if err != nil {
			return nil, err
		}
		chats[i].Members = members
	}
	return chats, nil
}

func (r *chatRepository) findPrivateChatBetween(ctx context.Context, userA, userB int64) (*domain.Chat, error) {
	row := r.db.QueryRow(ctx, `
		SELECT c.id, COALESCE(c.name, ''), c.chat_type, c.creator_id, c.created_at
		FROM chats c
		WHERE c.chat_type = 'private'
		  AND c.id IN (SELECT chat_id FROM chat_members WHERE user_id = $1)
		  AND c.id IN (SELECT chat_id FROM chat_members WHERE user_id = $2)
		LIMIT 1`, userA, userB)

	var chat domain.Chat
	if err := row.Scan(&chat.ID, &chat.Name, &chat.ChatType, &chat.CreatorID, &chat.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}
