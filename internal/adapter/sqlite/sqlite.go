// Package sqlite implements the key-value store port on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fitlane/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

const (
	defaultDirPerm = 0o755

	createTableSQL = `
	CREATE TABLE IF NOT EXISTS kv_items (
	    key        TEXT PRIMARY KEY,
	    value      TEXT NOT NULL,
	    updated_at INTEGER NOT NULL
	);`

	upsertSQL = `
	INSERT INTO kv_items (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// DB is a SQLite-backed domain.KeyValueStore.
type DB struct {
	sql *sql.DB
}

var _ domain.KeyValueStore = (*DB)(nil)

// Open creates the parent directory if needed, opens path in WAL mode and
// ensures the schema exists.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, fmt.Errorf("sqlite: create directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	s, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	s.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.ExecContext(ctx, createTableSQL); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &DB{sql: s}, nil
}

// Close checkpoints the WAL and closes the database.
func (d *DB) Close() error {
	if _, err := d.sql.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		_ = d.sql.Close()
		return fmt.Errorf("sqlite: checkpoint wal: %w", err)
	}
	return d.sql.Close()
}

// GetItem returns the value stored under key.
func (d *DB) GetItem(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.sql.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetItem upserts value under key.
func (d *DB) SetItem(ctx context.Context, key, value string) error {
	_, err := d.sql.ExecContext(ctx, upsertSQL, key, value, time.Now().Unix())
	return err
}

// RemoveItem deletes key.
func (d *DB) RemoveItem(ctx context.Context, key string) error {
	_, err := d.sql.ExecContext(ctx, `DELETE FROM kv_items WHERE key = ?`, key)
	return err
}
