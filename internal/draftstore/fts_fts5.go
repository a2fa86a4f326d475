//go:build sqlite_fts5

package draftstore

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS drafts_fts USING fts5(
			key UNINDEXED,
			title,
			body,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, key, title, body string, tags []string) error {
	_, _ = tx.Exec(`DELETE FROM drafts_fts WHERE key = ?`, key)
	_, err := tx.Exec(`INSERT INTO drafts_fts (key, title, body, tags) VALUES (?, ?, ?, ?)`,
		key, title, body, strings.Join(tags, " "))
	if err != nil {
		return fmt.Errorf("draftstore: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, key string) {
	_, _ = tx.Exec(`DELETE FROM drafts_fts WHERE key = ?`, key)
}

// Search performs an FTS5 full-text search over local drafts and returns
// matching results with snippets.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT key,
		       title,
		       snippet(drafts_fts, 2, '<b>', '</b>', '...', 64)
		FROM drafts_fts
		WHERE drafts_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("draftstore: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Key, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
