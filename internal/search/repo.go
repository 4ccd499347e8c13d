package search

import (
	"fmt"
)

// Row is one tagged section as stored in the mirror.
type Row struct {
	Path      string
	Tag       string
	Date      string
	StartLine int
	EndLine   int
	Content   string
}

// Result is one search hit.
type Result struct {
	Path      string `json:"path"`
	Tag       string `json:"tag"`
	Date      string `json:"date"`
	StartLine int    `json:"startLine"`
	Snippet   string `json:"snippet"`
}

const defaultLimit = 20

// Replace swaps the whole mirror for rows inside one transaction.
func (db *DB) Replace(rows []Row) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("search: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM sections`); err != nil {
		return fmt.Errorf("search: clear sections: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	if len(rows) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO sections (path, tag, date, start_line, end_line, content)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("search: prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			res, err := stmt.Exec(r.Path, r.Tag, r.Date, r.StartLine, r.EndLine, r.Content)
			if err != nil {
				return fmt.Errorf("search: insert section: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("search: section id: %w", err)
			}
			if err := ftsInsert(tx, id, r); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Count returns the number of mirrored sections.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM sections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("search: count: %w", err)
	}
	return n, nil
}
