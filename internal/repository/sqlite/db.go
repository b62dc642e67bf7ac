// Package sqlite is the embedded local store: the durable backing for
// the pending operation queue and a read mirror for tills that keep
// working while the hosted database is unreachable.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the embedded database handle.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the local database in WAL mode with a
// single writer, which is all the flush loop's read-then-update pattern
// needs.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pos-local.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	wrapped := &DB{db}
	if err := wrapped.migrate(); err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pending_operations (
		id          TEXT PRIMARY KEY,
		scope       TEXT NOT NULL,
		payload     TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_error  TEXT,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pending_status_updated
		ON pending_operations (status, updated_at);

	CREATE TABLE IF NOT EXISTS mirror_rows (
		table_name TEXT NOT NULL,
		row_id     TEXT NOT NULL,
		data       TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (table_name, row_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate local schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
