package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/eventshare/internal/persistence"
)

// Storage is a persistence.Store kept in a SQLite database.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

var _ persistence.Store = (*Storage)(nil)

// Open opens the database at dsn with DefaultConfig. Call Migrate before use.
func Open(dsn string) (*Storage, error) {
	return OpenWithConfig(DefaultConfig(dsn))
}

// OpenWithConfig opens the database described by cfg.
func OpenWithConfig(cfg Config) (*Storage, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, now: time.Now}, nil
}

// SetClock replaces the time source used for updated_at stamps.
func (s *Storage) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.now = now
}

// UpdatedAt reports when key was last written.
func (s *Storage) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	key, err := persistence.NormalizeKey(key)
	if err != nil {
		return time.Time{}, err
	}

	var stamp string
	err = s.db.QueryRowContext(ctx, `SELECT updated_at FROM local_storage WHERE key = ?`, key).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, persistence.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: updated_at %s: %w", key, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse updated_at %s: %w", key, err)
	}
	return updated, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	key, err := persistence.NormalizeKey(key)
	if err != nil {
		return "", err
	}

	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", persistence.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	key, err := persistence.NormalizeKey(key)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys in one transaction. Missing keys are ignored.
func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, strings.TrimSpace(key)); err != nil {
				return fmt.Errorf("sqlite: delete %s: %w", key, err)
			}
		}
		return nil
	})
}

// Clear removes every stored key.
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_storage`); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM local_storage ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
