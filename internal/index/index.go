// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/treehole-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	hole_id      TEXT NOT NULL,
	sender       TEXT NOT NULL,
	timestamp    INTEGER NOT NULL,
	emotion      TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	text         TEXT NOT NULL DEFAULT '',
	text_norm    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_messages_hole ON messages(hole_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_messages_tags ON messages(hole_id, emotion, content_type);
`

// =============================================================================
// MESSAGE INDEX
// =============================================================================

// Entry is one indexed message with its plaintext and tags.
type Entry struct {
	ID          string
	HoleID      string
	Sender      model.Sender
	Timestamp   int64
	Emotion     model.Emotion
	ContentType model.ContentType
	Text        string
}

// MessageIndex indexes decrypted messages for the history view.
type MessageIndex struct {
	db *sql.DB
	mu sync.RWMutex

	count     int
	lastBuilt time.Time
}

// NewMessageIndex opens a fresh in-memory index.
func NewMessageIndex() (*MessageIndex, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection: SQLite allows one writer, and a second
	// connection to :memory: would see a different database entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=MEMORY",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &MessageIndex{db: db}, nil
}

// Close discards the index and everything in it.
func (idx *MessageIndex) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// =============================================================================
// BUILD AND MAINTAIN
// =============================================================================

// BuildHole replaces the indexed contents of one hole in a single
// transaction. Called right after unlock with the freshly decrypted
// messages.
func (idx *MessageIndex) BuildHole(holeID string, entries []Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE hole_id = ?", holeID); err != nil {
		return fmt.Errorf("failed to clear hole: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO messages (id, hole_id, sender, timestamp, emotion, content_type, text, text_norm)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, holeID, string(e.Sender), e.Timestamp, string(e.Emotion), string(e.ContentType), e.Text, normalizeText(e.Text))
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	idx.lastBuilt = time.Now()
	return idx.refreshCount()
}

// Add indexes one new message, for the live chat view appending to an
// already-built hole.
func (idx *MessageIndex) Add(e Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO messages (id, hole_id, sender, timestamp, emotion, content_type, text, text_norm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.HoleID, string(e.Sender), e.Timestamp, string(e.Emotion), string(e.ContentType), e.Text, normalizeText(e.Text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return idx.refreshCount()
}

// SetTags records a classification that arrived after the message was
// indexed.
func (idx *MessageIndex) SetTags(msgID string, c model.Classification) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, err := idx.db.Exec(
		"UPDATE messages SET emotion = ?, content_type = ? WHERE id = ?",
		string(c.Emotion), string(c.ContentType), msgID,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Remove drops messages by ID, mirroring a bulk delete in the store.
func (idx *MessageIndex) Remove(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.Exec("DELETE FROM messages WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return idx.refreshCount()
}

// DropHole forgets everything indexed for a hole. Called when the
// user leaves the hole or it locks.
func (idx *MessageIndex) DropHole(holeID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.Exec("DELETE FROM messages WHERE hole_id = ?", holeID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return idx.refreshCount()
}

// refreshCount re-reads the row count. Caller holds the lock.
func (idx *MessageIndex) refreshCount() error {
	return idx.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&idx.count)
}

// =============================================================================
// SEARCH
// =============================================================================

// normalizeText prepares text for substring matching. SQLite's lower()
// only folds ASCII, so case folding happens here, along with NFC
// normalization and full-width/half-width folding. "ＯＫ" matches "ok".
func normalizeText(s string) string {
	return strings.ToLower(width.Fold.String(norm.NFC.String(s)))
}

// Query narrows a history search. Zero values mean "any".
type Query struct {
	HoleID      string
	Text        string
	Emotion     model.Emotion
	ContentType model.ContentType
	UserOnly    bool
}

// Search returns matching entries in chronological order.
func (idx *MessageIndex) Search(q Query) ([]Entry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var (
		where []string
		args  []any
	)
	if q.HoleID != "" {
		where = append(where, "hole_id = ?")
		args = append(args, q.HoleID)
	}
	if q.Text != "" {
		where = append(where, "text_norm LIKE ?")
		args = append(args, "%"+normalizeText(q.Text)+"%")
	}
	if q.Emotion != "" {
		where = append(where, "emotion = ?")
		args = append(args, string(q.Emotion))
	}
	if q.ContentType != "" {
		where = append(where, "content_type = ?")
		args = append(args, string(q.ContentType))
	}
	if q.UserOnly {
		where = append(where, "sender = ?")
		args = append(args, string(model.SenderUser))
	}

	query := "SELECT id, hole_id, sender, timestamp, emotion, content_type, text FROM messages"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp ASC"

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			e               Entry
			sender, emo, ct string
		)
		if err := rows.Scan(&e.ID, &e.HoleID, &sender, &e.Timestamp, &emo, &ct, &e.Text); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		e.Sender = model.Sender(sender)
		e.Emotion = model.Emotion(emo)
		e.ContentType = model.ContentType(ct)
		results = append(results, e)
	}
	return results, rows.Err()
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats returns index statistics.
type Stats struct {
	MessageCount int
	LastBuilt    time.Time
}

// Stats returns current index statistics.
func (idx *MessageIndex) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return Stats{
		MessageCount: idx.count,
		LastBuilt:    idx.lastBuilt,
	}
}
