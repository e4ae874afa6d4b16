// Package catalog provides read-only SQLite access to the archived course
// hierarchy. The schema is owned by the external archival process; it is
// applied here with IF NOT EXISTS only so that a missing or fresh database
// reads as an empty catalog instead of failing on the first query.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS courses (
	slug TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS modules (
	slug        TEXT PRIMARY KEY,
	course_slug TEXT NOT NULL REFERENCES courses(slug),
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	ordinal     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS items (
	slug        TEXT NOT NULL,
	module_slug TEXT NOT NULL REFERENCES modules(slug),
	name        TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT '',
	content     TEXT,
	position    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (module_slug, slug)
);

CREATE TABLE IF NOT EXISTS course_references (
	slug        TEXT NOT NULL,
	course_slug TEXT NOT NULL REFERENCES courses(slug),
	name        TEXT NOT NULL DEFAULT '',
	content     TEXT,
	position    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (course_slug, slug)
);

CREATE TABLE IF NOT EXISTS video_assets (
	item_slug  TEXT PRIMARY KEY,
	saved_path TEXT NOT NULL,
	subtitles  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS assets (
	id          TEXT PRIMARY KEY,
	course_slug TEXT NOT NULL REFERENCES courses(slug),
	type        TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	extension   TEXT NOT NULL DEFAULT '',
	saved_path  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS item_assets (
	item_slug TEXT NOT NULL,
	asset_id  TEXT NOT NULL REFERENCES assets(id),
	UNIQUE (item_slug, asset_id)
);

CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_slug);
CREATE INDEX IF NOT EXISTS idx_items_module ON items(module_slug);
CREATE INDEX IF NOT EXISTS idx_refs_course ON course_references(course_slug);
CREATE INDEX IF NOT EXISTS idx_assets_course ON assets(course_slug);
`

// DB wraps a sql.DB with catalog-specific queries.
type DB struct {
	conn *sql.DB
}

// Open opens the SQLite catalog and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the raw connection for test fixtures.
func (db *DB) Conn() *sql.DB {
	return db.conn
}
