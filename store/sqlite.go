package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_kv (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  updated_at INTEGER NOT NULL
)`

// SQLiteStore persists keys in a single-table SQLite database, the durable store
// for desktop and CLI clients.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// OpenSQLiteStore opens (or creates) the database at path and ensures the schema.
// Unlike the TokenStore methods, opening can fail and reports it.
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite store path required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// one writer keeps in-memory databases coherent and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, timeout: defaultRedisTimeout, logger: logger}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *SQLiteStore) Get(key string) (string, bool) {
	ctx, cancel := s.ctx()
	defer cancel()

	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("goSession: sqlite store read failed", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

func (s *SQLiteStore) Set(key, value string) {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		s.logger.Warn("goSession: sqlite store write failed", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Remove(key string) {
	ctx, cancel := s.ctx()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, key); err != nil {
		s.logger.Warn("goSession: sqlite store delete failed", "key", key, "error", err)
	}
}

// RemoveMatching compares the key head with substr rather than LIKE, so
// prefixes containing % or _ match literally.
func (s *SQLiteStore) RemoveMatching(prefix string) {
	if prefix == "" {
		return
	}
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE substr(key, 1, length(?)) = ?`,
		prefix, prefix,
	)
	if err != nil {
		s.logger.Warn("goSession: sqlite store sweep failed", "prefix", prefix, "error", err)
	}
}
