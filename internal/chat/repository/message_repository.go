package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/errs"
)

// MessageRepository is the durable Message Store: transactional writes of
// messages and read receipts, and their read paths.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	FindByID(ctx context.Context, messageID int64) (*domain.Message, error)
	FindByClientID(ctx context.Context, chatID, senderID int64, clientMessageID string) (*domain.Message, error)
	ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]domain.MessageRecord, error)
	CreateReceipt(ctx context.Context, messageID, readerID int64) (created bool, err error)
	ListReceipts(ctx context.Context, messageID int64) ([]domain.ReceiptView, error)
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

// Insert stores a message; id and server timestamp are assigned by the
// store. A duplicate client token surfaces as a unique violation the caller
// treats as the idempotent-replay path.
func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO messages(chat_id, sender_id, text, client_message_id)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, timestamp, is_read`,
		msg.ChatID, msg.SenderID, msg.Text, msg.ClientMessageID)
	return row.Scan(&msg.ID, &msg.Timestamp, &msg.IsRead)
}

func (r *messageRepository) FindByID(ctx context.Context, messageID int64) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, chat_id, sender_id, text, timestamp, is_read, COALESCE(client_message_id, '')
		FROM messages WHERE id = $1`, messageID)
	return scanMessage(row)
}

func (r *messageRepository) FindByClientID(ctx context.Context, chatID, senderID int64, clientMessageID string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, chat_id, sender_id, text, timestamp, is_read, COALESCE(client_message_id, '')
		FROM messages
		WHERE chat_id = $1 AND sender_id = $2 AND client_message_id = $3`,
		chatID, senderID, clientMessageID)
	return scanMessage(row)
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var msg domain.Message
	err := row.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.Text, &msg.Timestamp, &msg.IsRead, &msg.ClientMessageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFound("message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]domain.MessageRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT m.id, m.chat_id, m.sender_id, u.username, m.text, m.timestamp, m.is_read, COALESCE(m.client_message_id, '')
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.chat_id = $1
		ORDER BY m.timestamp ASC
		LIMIT $2 OFFSET $3`, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.MessageRecord
	for rows.Next() {
		var msg domain.Message
		var username string
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &username, &msg.Text, &msg.Timestamp, &msg.IsRead, &msg.ClientMessageID); err != nil {
			return nil, err
		}
		records = append(records, msg.Record(username))
	}
	return records, rows.Err()
}

// CreateReceipt inserts a receipt and flips the message's read flag in one
// transaction. created is false when the (message, reader) pair already has
// a receipt; nothing is written in that case.
func (r *messageRepository) CreateReceipt(ctx context.Context, messageID, readerID int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO message_read_receipts(message_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT uniq_message_user_read DO NOTHING`,
		messageID, readerID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, "UPDATE messages SET is_read = TRUE WHERE id = $1", messageID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *messageRepository) ListReceipts(ctx context.Context, messageID int64) ([]domain.ReceiptView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rr.message_id, rr.user_id, u.username, rr.read_at
		FROM message_read_receipts rr
		JOIN users u ON u.id = rr.user_id
		WHERE rr.message_id = $1
		ORDER BY rr.read_at ASC`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []domain.ReceiptView
	for rows.Next() {
		var rv domain.ReceiptView
		if err := rows.Scan(&rv.MessageID, &rv.UserID, &rv.Username, &rv.ReadAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, rv)
	}
	return receipts, rows.Err()
}
