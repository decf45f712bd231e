package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/desivolt/muzdesk/internal/config"
)

// sqliteSchema mirrors migrations/001_create_tickets.sql for the embedded driver.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tickets (
    id                  TEXT PRIMARY KEY,
    ticket_number       TEXT NOT NULL UNIQUE,
    name                TEXT NOT NULL,
    phone               TEXT NOT NULL,
    address             TEXT NOT NULL,
    landmark            TEXT NOT NULL DEFAULT '',
    pincode             TEXT NOT NULL,
    appliance_type      TEXT NOT NULL,
    problem_description TEXT NOT NULL,
    status              TEXT NOT NULL DEFAULT 'Pending',
    assigned_to         TEXT,
    deleted_reason      TEXT,
    created_at          DATETIME NOT NULL,
    updated_at          DATETIME NOT NULL,
    resolved_at         DATETIME
);
CREATE INDEX IF NOT EXISTS idx_tickets_assigned_to ON tickets(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
`

// SQLite wraps a database/sql handle on the go-sqlite3 driver.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite opens the database file and applies the schema.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, errors.New("SQLITE_PATH not provided")
	}
	db, err := OpenSQLite(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	logger.Info("opened sqlite store", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

// OpenSQLite opens path (or ":memory:") with a single connection and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// go-sqlite3 gives every connection its own :memory: database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Close releases the handle.
func (s *SQLite) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies the handle is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("sqlite store not configured")
	}
	return s.DB.PingContext(ctx)
}
