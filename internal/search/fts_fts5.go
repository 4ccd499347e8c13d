//go:build sqlite_fts5

package search

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS sections_fts USING fts5(
			tag,
			content,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, id int64, r Row) error {
	_, err := tx.Exec(`INSERT INTO sections_fts (rowid, tag, content) VALUES (?, ?, ?)`, id, r.Tag, r.Content)
	if err != nil {
		return fmt.Errorf("search: insert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM sections_fts`); err != nil {
		return fmt.Errorf("search: clear fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search and returns matching sections with snippets.
func (db *DB) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`
		SELECT s.path,
		       s.tag,
		       s.date,
		       s.start_line,
		       snippet(sections_fts, 1, '<b>', '</b>', '...', 64)
		FROM sections_fts
		JOIN sections s ON s.id = sections_fts.rowid
		WHERE sections_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: query: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.Path, &r.Tag, &r.Date, &r.StartLine, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
