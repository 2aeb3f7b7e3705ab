// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jonathalimax/cortexia-app/internal/model"
)

// =============================================================================
// STORE
// =============================================================================

// ChatStore persists messages and the model cache in SQLite.
type ChatStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*ChatStore, error) {
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &ChatStore{db: db}, nil
}

// Close closes the underlying database.
func (s *ChatStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// MESSAGES
// =============================================================================

// FetchMessages returns a chat's messages in chronological order.
//
// The underlying query runs newest-first so pagination windows walk
// backwards through history; the page is reversed before returning.
// A nil pagination fetches the whole chat.
func (s *ChatStore) FetchMessages(ctx context.Context, chatID string, p *model.Pagination) ([]*model.Message, error) {
	query := `SELECT id, chat_id, sender, content, sent_at, tokens, costs
	          FROM messages WHERE chat_id = ? ORDER BY sent_at DESC, id DESC`
	args := []any{chatID}

	if p != nil {
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.Limit, p.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Reverse the newest-first page to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.Printf("storage: fetched %d messages for chat %s", len(messages), chatID)
	return messages, nil
}

// SaveMessage inserts a message into a chat.
func (s *ChatStore) SaveMessage(ctx context.Context, chatID string, m *model.Message) error {
	sentAt := m.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, sender, content, sent_at, tokens, costs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, chatID, m.Sender.String(), m.Content, sentAt.UnixNano(), m.Tokens, nullFloat(m.Costs))
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// ReplaceMessage swaps the stored record's identity and payload for
// the new message, keeping its chat, sender and position in time.
// Replacing an absent message is a no-op.
func (s *ChatStore) ReplaceMessage(ctx context.Context, currentID string, m *model.Message) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE messages SET id = ?, content = ?, tokens = ?, costs = ? WHERE id = ?`,
		m.ID, m.Content, m.Tokens, nullFloat(m.Costs), currentID)
	if err != nil {
		return fmt.Errorf("failed to replace message: %w", err)
	}
	return nil
}

// DeleteChat removes every message belonging to a chat.
func (s *ChatStore) DeleteChat(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	return nil
}

// CleanHistory removes every message in the store.
func (s *ChatStore) CleanHistory(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	return nil
}

// IsChatDeleted reports whether a chat has no stored messages.
func (s *ChatStore) IsChatDeleted(ctx context.Context, chatID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM (SELECT 1 FROM messages WHERE chat_id = ? LIMIT 1)`, chatID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check chat: %w", err)
	}
	return n == 0, nil
}

// FetchChats returns every stored message across all chats, newest
// first. The history aggregator reduces this to one lead message per
// chat.
func (s *ChatStore) FetchChats(ctx context.Context) ([]*model.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, sender, content, sent_at, tokens, costs
		 FROM messages ORDER BY sent_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chats: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// Chats returns the chat list projection: one record per distinct
// chat, carrying the timestamp of its earliest message, newest chat
// first.
func (s *ChatStore) Chats(ctx context.Context) ([]model.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, MIN(sent_at)
		 FROM messages GROUP BY chat_id ORDER BY MIN(sent_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat list: %w", err)
	}
	defer rows.Close()

	var chats []model.Chat
	for rows.Next() {
		var c model.Chat
		var startAt int64
		if err := rows.Scan(&c.ID, &startAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		c.StartAt = time.Unix(0, startAt)
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// =============================================================================
// MODEL CACHE
// =============================================================================

// CachedModel is one entry of the locally cached model list.
type CachedModel struct {
	ID      string
	OwnedBy string
}

// Models returns the cached model list, sorted by id.
func (s *ChatStore) Models(ctx context.Context) ([]CachedModel, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, owned_by FROM models ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}
	defer rows.Close()

	var models []CachedModel
	for rows.Next() {
		var m CachedModel
		if err := rows.Scan(&m.ID, &m.OwnedBy); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

// SaveModels replaces the cached model list.
func (s *ChatStore) SaveModels(ctx context.Context, models []CachedModel) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM models`); err != nil {
		return fmt.Errorf("failed to clear model cache: %w", err)
	}

	for _, m := range models {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO models (id, owned_by) VALUES (?, ?)`, m.ID, m.OwnedBy); err != nil {
			return fmt.Errorf("failed to cache model: %w", err)
		}
	}

	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

// scanMessages reads message rows into models.
func scanMessages(rows *sql.Rows) ([]*model.Message, error) {
	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		var sender string
		var sentAt int64
		var costs sql.NullFloat64

		if err := rows.Scan(&m.ID, &m.ChatID, &sender, &m.Content, &sentAt, &m.Tokens, &costs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		m.Sender = model.Role(sender)
		m.SentAt = time.Unix(0, sentAt)
		if costs.Valid {
			c := costs.Float64
			m.Costs = &c
		}

		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// nullFloat maps an optional cost to its SQL representation.
func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
