package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// Database is an open, migrated history database.
type Database struct {
	db   *sql.DB
	path string
}

// Open creates the parent directory if needed, applies migrations and
// connects to the database at path.
func Open(ctx context.Context, path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	if err := MigrateUp(path); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	conn, err := NewSQLiteConnection(ctx, DefaultConnectionConfig(path))
	if err != nil {
		return nil, err
	}

	return &Database{db: conn, path: path}, nil
}

// DB returns the underlying connection pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Close closes the connection. It is safe to call more than once.
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
