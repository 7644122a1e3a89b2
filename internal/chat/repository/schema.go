package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// schema holds the durable store layout. The partial unique index on
// messages enforces at most one row per (sender, chat, client token) when
// the token is non-empty; the receipts index enforces one receipt per
// (message, reader).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              BIGSERIAL PRIMARY KEY,
		username        VARCHAR(50)  NOT NULL UNIQUE,
		email           VARCHAR(100) NOT NULL UNIQUE,
		hashed_password VARCHAR(255) NOT NULL,
		is_active       BOOLEAN      NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS chats (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(100),
		chat_type  VARCHAR(10) NOT NULL DEFAULT 'private',
		creator_id BIGINT      NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS chat_members (
		chat_id   BIGINT      NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		user_id   BIGINT      NOT NULL REFERENCES users(id),
		is_admin  BOOLEAN     NOT NULL DEFAULT FALSE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (chat_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id                BIGSERIAL PRIMARY KEY,
		chat_id           BIGINT      NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id         BIGINT      NOT NULL REFERENCES users(id),
		text              TEXT        NOT NULL,
		timestamp         TIMESTAMPTZ NOT NULL DEFAULT now(),
		is_read           BOOLEAN     NOT NULL DEFAULT FALSE,
		client_message_id VARCHAR(100)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat_ts ON messages(chat_id, timestamp)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_messages_client_id
		ON messages(sender_id, chat_id, client_message_id)
		WHERE client_message_id IS NOT NULL AND client_message_id <> ''`,
	`CREATE TABLE IF NOT EXISTS message_read_receipts (
		id         BIGSERIAL PRIMARY KEY,
		message_id BIGINT      NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		user_id    BIGINT      NOT NULL REFERENCES users(id),
		read_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uniq_message_user_read UNIQUE (message_id, user_id)
	)`,
}

// EnsureSchema creates the tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
