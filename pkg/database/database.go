// Package database persists a history of processor ticks and individual
// probe outcomes, using sqlx over modernc.org/sqlite, so that the control
// server can expose what the daemon has been observing.
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a sqlx connection to the ledger database.
type DB struct {
	*sqlx.DB
}

// Open connects to the sqlite database at path (or an in-memory database if
// path is ":memory:"), ensures the containing directory exists, optionally
// enables WAL mode, and initializes the schema.
func Open(path string, walMode bool) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connStr := path
	if walMode && path != ":memory:" {
		connStr += "?_journal_mode=WAL&_sync=NORMAL&_foreign_keys=ON"
	}

	db, err := sqlx.Connect("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	wrapper := &DB{DB: db}
	if err := wrapper.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return wrapper, nil
}

// InitSchema creates the ledger tables if they do not already exist.
func (db *DB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tick_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		active BOOLEAN NOT NULL,
		idle_since DATETIME,
		wakeup_at DATETIME,
		suspended BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS probe_ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick_id INTEGER NOT NULL,
		kind TEXT NOT NULL, -- activity, wakeup
		name TEXT NOT NULL,
		matched BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (tick_id) REFERENCES tick_history(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_tick_history_ts ON tick_history(ts);
	CREATE INDEX IF NOT EXISTS idx_probe_ledger_tick_id ON probe_ledger(tick_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifies the connection is alive.
func (db *DB) HealthCheck() error {
	var result int
	if err := db.Get(&result, "SELECT 1"); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// TickRepository returns a repository for tick_history rows.
func (db *DB) TickRepository() *TickRepository {
	return &TickRepository{db: db}
}
