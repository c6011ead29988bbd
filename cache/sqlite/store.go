// Package sqlite provides a SQLite-backed UUID-to-name cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/louisbranch/namecache/cache"
	_ "modernc.org/sqlite"
)

// Store persists UUID-to-name associations in a single SQLite file.
//
// The store holds one logical connection and a reusable prepared upsert
// statement; a mutex serializes every operation against them because the
// embedded engine is not safe for concurrent statement execution on one
// connection. Calls block while another call of either kind is in progress.
type Store struct {
	mu     sync.Mutex
	sqlDB  *sql.DB
	upsert *sql.Stmt
}

// Open opens or creates a cache store at path and ensures the schema exists.
// A returned error always leaves the underlying handle closed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, cache.New(cache.CodeInvalidArgument, "storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "open sqlite db", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, cache.Wrap(cache.CodeStorage, "ping sqlite db", err)
	}
	if err := ensureSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, cache.Wrap(cache.CodeStorage, "ensure schema", err)
	}
	upsert, err := sqlDB.Prepare(`INSERT OR REPLACE INTO uuid_cache (name, uuid) VALUES (?, ?)`)
	if err != nil {
		_ = sqlDB.Close()
		return nil, cache.Wrap(cache.CodeStorage, "prepare upsert statement", err)
	}
	return &Store{sqlDB: sqlDB, upsert: upsert}, nil
}

// ensureSchema creates the entry table and name index if absent. The column
// widths document the expected shapes; SQLite does not enforce them.
func ensureSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
CREATE TABLE IF NOT EXISTS uuid_cache (
	uuid CHAR(36) PRIMARY KEY NOT NULL,
	name CHAR(32) NOT NULL
)
`)
	if err != nil {
		return fmt.Errorf("create uuid_cache table: %w", err)
	}

	// CREATE INDEX has no IF NOT EXISTS guard here so reopening an
	// initialized file fails with "already exists"; exactly that failure
	// is swallowed, anything else propagates.
	if _, err := sqlDB.Exec(`CREATE INDEX name_index ON uuid_cache (name)`); err != nil {
		if !isAlreadyExists(err) {
			return fmt.Errorf("create name index: %w", err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Close releases the prepared statement and the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	if s.upsert != nil {
		_ = s.upsert.Close()
	}
	return s.sqlDB.Close()
}

// PutAll stores every association in entries, overwriting any existing name
// for the same UUID. Entries are applied one at a time through the shared
// prepared statement; on failure the preceding entries remain applied.
func (s *Store) PutAll(ctx context.Context, entries map[uuid.UUID]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return cache.New(cache.CodeStorage, "storage is not configured")
	}
	if err := cache.ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, name := range entries {
		if _, err := s.upsert.ExecContext(ctx, name, id.String()); err != nil {
			return cache.Wrap(cache.CodeStorage, "upsert cache entry", err)
		}
	}
	return nil
}

// GetAllPresent resolves the requested ids with a single membership query
// and returns the subset that have stored associations.
func (s *Store) GetAllPresent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, cache.New(cache.CodeStorage, "storage is not configured")
	}
	if err := cache.ValidateIDs(ids); err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query, args := lookupQuery(ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "query cache entries", err)
	}
	defer rows.Close()

	if err := foldRows(rows, found); err != nil {
		return nil, err
	}
	return found, nil
}

var _ cache.Cache = (*Store)(nil)
