// Package db stores the texture history catalog in SQLite.
//
// The database runs in WAL mode with a single open connection, so writes
// from concurrent jobs are serialized by database/sql. The schema is
// embedded and applied with golang-migrate when the database is opened.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ConnectionConfig holds SQLite connection settings.
type ConnectionConfig struct {
	Path string

	// BusyTimeout is how long a writer waits for a lock.
	BusyTimeout time.Duration

	// MaxOpenConns is 1 by default: SQLite allows one writer at a time.
	MaxOpenConns int
}

// DefaultConnectionConfig returns the settings used by Open.
func DefaultConnectionConfig(path string) ConnectionConfig {
	return ConnectionConfig{
		Path:         path,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1,
	}
}

// NewSQLiteConnection opens path and enables WAL journaling and foreign
// keys. It fails if the journal mode could not be switched to WAL.
func NewSQLiteConnection(ctx context.Context, config ConnectionConfig) (*sql.DB, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", config.BusyTimeout.Milliseconds()),
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", p, err)
		}
	}

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		db.Close()
		return nil, fmt.Errorf("WAL mode not enabled, got: %s", journalMode)
	}

	return db, nil
}
