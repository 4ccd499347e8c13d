//go:build !sqlite_fts5

package search

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the sections table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ int64, _ Row) error { return nil }

func ftsClear(_ *sql.Tx) error { return nil }

// Search performs a LIKE-based search over section content and tags
// (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, tag, date, start_line, substr(content, 1, 200)
		FROM sections
		WHERE content LIKE ? OR tag LIKE ?
		ORDER BY id
		LIMIT ?
	`, like, like, limit)
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
