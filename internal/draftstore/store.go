// Package draftstore provides SQLite-backed persistence for unpublished page
// drafts, keyed by derived draft keys, with optional FTS5 full-text search.
package draftstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/halvard/skald/internal/checksum"
	"github.com/halvard/skald/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drafts (
	key      TEXT PRIMARY KEY,
	kind     TEXT NOT NULL DEFAULT 'post',
	saved_at INTEGER NOT NULL DEFAULT 0,
	title    TEXT NOT NULL DEFAULT '',
	tags     TEXT NOT NULL DEFAULT '[]',
	body     TEXT NOT NULL DEFAULT '',
	fields   TEXT NOT NULL DEFAULT '{}',
	checksum TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_drafts_saved_at ON drafts(saved_at);
`

// Store wraps a sql.DB with draft persistence operations.
type Store struct {
	conn *sql.DB
}

// Entry is a lightweight draft listing item.
type Entry struct {
	Key     string
	Kind    models.PageKind
	Title   string
	SavedAt time.Time
}

// SearchResult is one full-text search hit over local drafts.
type SearchResult struct {
	Key     string
	Title   string
	Snippet string
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("draftstore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("draftstore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("draftstore: apply schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("draftstore: apply fts schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Put persists a draft under key, last-write-wins. Timestamps are stored as
// epoch milliseconds.
func (s *Store) Put(key string, rec models.DraftRecord) error {
	fieldsJSON, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("draftstore: marshal fields: %w", err)
	}
	tagsJSON, _ := json.Marshal(rec.Fields.Tags)

	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("draftstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO drafts (key, kind, saved_at, title, tags, body, fields, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			kind     = excluded.kind,
			saved_at = excluded.saved_at,
			title    = excluded.title,
			tags     = excluded.tags,
			body     = excluded.body,
			fields   = excluded.fields,
			checksum = excluded.checksum
	`, key, string(rec.Kind), rec.SavedAt.UnixMilli(), rec.Fields.Title,
		string(tagsJSON), rec.Fields.Body, string(fieldsJSON), checksum.Sum(fieldsJSON))
	if err != nil {
		return fmt.Errorf("draftstore: upsert draft: %w", err)
	}

	if err := ftsUpsert(tx, key, rec.Fields.Title, rec.Fields.Body, rec.Fields.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns the draft stored under key, or nil when none exists. A corrupt
// entry is discarded and reads as "no draft"; it is never fatal.
func (s *Store) Get(key string) (*models.DraftRecord, error) {
	var (
		kind    string
		savedAt int64
		fields  string
	)
	err := s.conn.QueryRow(`SELECT kind, saved_at, fields FROM drafts WHERE key = ?`, key).
		Scan(&kind, &savedAt, &fields)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draftstore: get %s: %w", key, err)
	}

	var f models.PageFields
	if err := json.Unmarshal([]byte(fields), &f); err != nil {
		// Corrupt entry: drop it and proceed as if no draft existed.
		_ = s.Delete(key)
		return nil, nil
	}

	return &models.DraftRecord{
		SavedAt: time.UnixMilli(savedAt).UTC(),
		Kind:    models.PageKind(kind),
		Fields:  f,
	}, nil
}

// Checksum returns the stored content checksum for key, or empty string when
// no draft exists.
func (s *Store) Checksum(key string) (string, error) {
	var cs string
	err := s.conn.QueryRow(`SELECT checksum FROM drafts WHERE key = ?`, key).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// Delete removes the draft stored under key. Deleting a missing key is a
// no-op.
func (s *Store) Delete(key string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("draftstore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, key)
	if _, err := tx.Exec(`DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("draftstore: delete %s: %w", key, err)
	}
	return tx.Commit()
}

// ListPrefix returns every draft whose key starts with prefix, most recently
// saved first.
func (s *Store) ListPrefix(prefix string) ([]Entry, error) {
	pattern := strings.ReplaceAll(strings.ReplaceAll(prefix, `\`, `\\`), "%", `\%`)
	pattern = strings.ReplaceAll(pattern, "_", `\_`) + "%"
	rows, err := s.conn.Query(`
		SELECT key, kind, title, saved_at
		FROM drafts
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY saved_at DESC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("draftstore: list prefix: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			kind    string
			savedAt int64
		)
		if err := rows.Scan(&e.Key, &kind, &e.Title, &savedAt); err != nil {
			return nil, err
		}
		e.Kind = models.PageKind(kind)
		e.SavedAt = time.UnixMilli(savedAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
