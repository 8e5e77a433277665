// Package repository provides database/sql implementations of the
// key-value persistence backend for PostgreSQL and SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// dialect holds the driver-specific statements.
type dialect struct {
	get    string
	upsert string
}

var postgresDialect = dialect{
	get: `SELECT value FROM kv_store WHERE key = $1`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`,
}

var sqliteDialect = dialect{
	get: `SELECT value FROM kv_store WHERE key = ?`,
	upsert: `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`,
}

// KeyValueRepository stores opaque values by key in the kv_store table.
type KeyValueRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	d  dialect
	// now is replaceable in tests.
	now func() time.Time
}

// NewPostgresKeyValueRepository creates a KeyValueRepository for a
// PostgreSQL connection.
func NewPostgresKeyValueRepository(db *sql.DB) *KeyValueRepository {
	return &KeyValueRepository{DB: db, d: postgresDialect, now: time.Now}
}

// NewSQLiteKeyValueRepository creates a KeyValueRepository for a SQLite
// connection.
func NewSQLiteKeyValueRepository(db *sql.DB) *KeyValueRepository {
	return &KeyValueRepository{DB: db, d: sqliteDialect, now: time.Now}
}

// Get returns the value stored under key, or (nil, nil) if there is none.
func (r *KeyValueRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.DB.QueryRowContext(ctx, r.d.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (r *KeyValueRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.DB.ExecContext(ctx, r.d.upsert, key, value, r.now().Unix())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (r *KeyValueRepository) Close() error {
	return r.DB.Close()
}
