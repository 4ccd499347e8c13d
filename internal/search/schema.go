// Package search keeps a SQLite full-text mirror of the tagged sections of
// the current index snapshot. The mirror is derived data: it is replaced
// wholesale after every rebuild and defaults to an in-memory database.
package search

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN selects a private in-memory database.
const MemoryDSN = ":memory:"

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS sections (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT    NOT NULL,
	tag        TEXT    NOT NULL,
	date       TEXT    NOT NULL DEFAULT '',
	start_line INTEGER NOT NULL,
	end_line   INTEGER NOT NULL,
	content    TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_sections_tag  ON sections(tag);
CREATE INDEX IF NOT EXISTS idx_sections_path ON sections(path);
`

// DB wraps a sql.DB with search-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	params := "_busy_timeout=5000&_foreign_keys=on"
	if dsn != MemoryDSN {
		params = "_journal_mode=WAL&" + params
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	conn, err := sql.Open("sqlite3", dsn+sep+params)
	if err != nil {
		return nil, fmt.Errorf("search: open db: %w", err)
	}
	// A single connection keeps an in-memory database alive and shared.
	conn.SetMaxOpenConns(1)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("search: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
