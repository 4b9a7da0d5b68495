// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed       = errors.New("history store closed")
	ErrChatNotFound = errors.New("chat not found in local history")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    chat_id    TEXT PRIMARY KEY,
    username   TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id  TEXT NOT NULL REFERENCES chats(chat_id) ON DELETE CASCADE,
    sender   TEXT NOT NULL,
    body     TEXT NOT NULL,
    sent_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, id);
CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(username, updated_at DESC);
`

// =============================================================================
// STORE
// =============================================================================

// Chat is one cached chat session header.
type Chat struct {
	ChatID    string
	Username  string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one cached transcript line.
type Message struct {
	ChatID string
	Sender string
	Body   string
	SentAt time.Time
}

// Store is a write-through local cache of chats and messages. The
// backend stays authoritative; the cache serves reads when offline and
// keeps the sidebar fast.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// CHATS
// =============================================================================

// UpsertChat records or refreshes a chat header.
func (s *Store) UpsertChat(ctx context.Context, c Chat) error {
	if s.db == nil {
		return ErrClosed
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chats (chat_id, username, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
		    title = excluded.title,
		    updated_at = excluded.updated_at`,
		c.ChatID, c.Username, c.Title,
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert chat: %w", err)
	}
	return nil
}

// RenameChat updates a cached chat title.
func (s *Store) RenameChat(ctx context.Context, chatID, title string) error {
	if s.db == nil {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE chats SET title = ?, updated_at = ? WHERE chat_id = ?",
		title, time.Now().UTC().Format(time.RFC3339), chatID)
	if err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// DeleteChat removes a chat and its messages from the cache.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chats WHERE chat_id = ?", chatID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// Chats lists cached chats for username, most recently updated first.
func (s *Store) Chats(ctx context.Context, username string) ([]Chat, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, username, title, created_at, updated_at
		FROM chats WHERE username = ?
		ORDER BY updated_at DESC`, username)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var c Chat
		var created, updated string
		if err := rows.Scan(&c.ChatID, &c.Username, &c.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, created)
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// =============================================================================
// MESSAGES
// =============================================================================

// AppendMessage records one transcript line for a chat.
func (s *Store) AppendMessage(ctx context.Context, m Message) error {
	if s.db == nil {
		return ErrClosed
	}
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (chat_id, sender, body, sent_at) VALUES (?, ?, ?, ?)",
		m.ChatID, m.Sender, m.Body, m.SentAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE chats SET updated_at = ? WHERE chat_id = ?",
		m.SentAt.Format(time.RFC3339), m.ChatID)
	if err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	return nil
}

// ReplaceMessages swaps the cached transcript for a chat with the
// backend's copy after a history fetch.
func (s *Store) ReplaceMessages(ctx context.Context, chatID string, msgs []Message) error {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", chatID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	for _, m := range msgs {
		sentAt := m.SentAt
		if sentAt.IsZero() {
			sentAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO messages (chat_id, sender, body, sent_at) VALUES (?, ?, ?, ?)",
			chatID, m.Sender, m.Body, sentAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
	}
	return tx.Commit()
}

// Messages returns the cached transcript for a chat in send order.
func (s *Store) Messages(ctx context.Context, chatID string) ([]Message, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, sender, body, sent_at
		FROM messages WHERE chat_id = ?
		ORDER BY id ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var sentAt string
		if err := rows.Scan(&m.ChatID, &m.Sender, &m.Body, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.SentAt, _ = time.Parse(time.RFC3339, sentAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
