// Package sqlite records harvest runs and their records in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// DB is the run database.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB returns a DB for path. Nothing is opened until Open.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// pragmas returns the connection settings for the database at path.
func pragmas(path string) []string {
	p := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	// WAL lets `runs` read while a harvest is being recorded.
	if path != Memory {
		p = append(p, "PRAGMA journal_mode = WAL")
	}
	return p
}

// Open connects to the database, applies pragmas and migrates the schema.
func (db *DB) Open() (err error) {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			conn.Close()
		}
	}()

	// SQLite has a single writer and each :memory: connection is its own
	// database.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, pragma := range pragmas(db.path) {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	db.db = conn
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// Runs own their fields and warnings; deleting a run cascades.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	start_year INTEGER NOT NULL,
	end_year INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	blocks INTEGER NOT NULL DEFAULT 0,
	records INTEGER NOT NULL DEFAULT 0,
	warnings INTEGER NOT NULL DEFAULT 0,
	corpus_hash TEXT NOT NULL DEFAULT '',
	table_path TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fields (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	record INTEGER NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	raw TEXT NOT NULL,
	number REAL,
	PRIMARY KEY (run_id, record, position)
);

CREATE TABLE IF NOT EXISTS warnings (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	kind TEXT NOT NULL,
	line INTEGER NOT NULL,
	field TEXT NOT NULL DEFAULT '',
	text TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_outcome_started ON runs(outcome, started_at);
`
