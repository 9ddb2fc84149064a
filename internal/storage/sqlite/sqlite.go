// Package sqlite implements the storage interface on a single SQLite
// file. WAL mode keeps the audit trail writable while queries run.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/mod/semver"
)

// SQLiteStorage implements the resolution storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path and initializes
// the schema. The special path ":memory:" creates an in-memory database.
func New(path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.checkSchemaVersion(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// checkSchemaVersion stamps a fresh database and refuses one written by
// an incompatible major version.
func (s *SQLiteStorage) checkSchemaVersion(ctx context.Context) error {
	stored, err := s.GetConfig(ctx, "schema_version")
	if err != nil {
		return err
	}
	if stored == "" {
		return s.SetConfig(ctx, "schema_version", SchemaVersion)
	}
	if !semver.IsValid(stored) {
		return fmt.Errorf("database has unparseable schema version %q", stored)
	}
	if semver.Major(stored) != semver.Major(SchemaVersion) {
		return fmt.Errorf("database schema version %s is incompatible with %s",
			stored, SchemaVersion)
	}
	return nil
}

// GetConfig returns the value for key, or empty string when unset.
func (s *SQLiteStorage) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read config key %q: %w", key, err)
	}
	return value, nil
}

// SetConfig stores a key/value pair, replacing any existing value.
func (s *SQLiteStorage) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set config key %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
