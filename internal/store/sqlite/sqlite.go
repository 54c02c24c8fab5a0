// Package sqlite persists collections in a single SQLite table using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/pathways/internal/store"
	"github.com/MrSnakeDoc/pathways/internal/utils"
)

//go:embed schema.sql
var schemaSQL string

var _ store.Store = (*Store)(nil)

// Store is a store.Store backed by one SQLite database file.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
	now  func() time.Time
}

// New returns a store for path. Nothing is opened until Init.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Init opens the database, applies pragmas and creates the schema.
// Calling it again on an open store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return store.Unavailable(fmt.Errorf("create data dir: %w", err))
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return store.Unavailable(fmt.Errorf("open sqlite database: %w", err))
	}

	// Single writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		utils.Close(db)
		return store.Unavailable(fmt.Errorf("connect sqlite database: %w", err))
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			utils.Close(db)
			return store.Unavailable(fmt.Errorf("apply %q: %w", pragma, err))
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		utils.Close(db)
		return store.Unavailable(fmt.Errorf("create schema: %w", err))
	}

	s.db = db
	return nil
}

func (s *Store) Get(ctx context.Context, c store.Collection, key string) ([]byte, error) {
	db, err := s.handle(c)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE collection = ? AND key = ?`,
		string(c), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("get %s/%s: %w", c, key, err))
	}
	return value, nil
}

func (s *Store) GetAll(ctx context.Context, c store.Collection) ([]store.Record, error) {
	db, err := s.handle(c)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM records WHERE collection = ? ORDER BY key`,
		string(c),
	)
	if err != nil {
		return nil, store.Unavailable(fmt.Errorf("list %s: %w", c, err))
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var rec store.Record
		if err := rows.Scan(&rec.Key, &rec.Value); err != nil {
			return nil, store.Unavailable(fmt.Errorf("scan %s: %w", c, err))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Unavailable(fmt.Errorf("iterate %s: %w", c, err))
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, c store.Collection, key string, value []byte) error {
	db, err := s.handle(c)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO records (collection, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, string(c), key, value, s.now().UnixMilli())
	if err != nil {
		return store.Unavailable(fmt.Errorf("put %s/%s: %w", c, key, err))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c store.Collection, key string) error {
	db, err := s.handle(c)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND key = ?`,
		string(c), key,
	); err != nil {
		return store.Unavailable(fmt.Errorf("delete %s/%s: %w", c, key, err))
	}
	return nil
}

// Close closes the database. Safe to call on a store that never opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) handle(c store.Collection) (*sql.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, store.ErrNotInitialized
	}
	return s.db, nil
}
