// Package postgres provides a PostgreSQL-backed UUID-to-name cache.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/louisbranch/namecache/cache"
)

// duplicateRelationCode is the Postgres error code for an existing
// table or index (duplicate_table).
const duplicateRelationCode = "42P07"

// Store persists UUID-to-name associations in a PostgreSQL table. It keeps
// the same serialized one-call-at-a-time discipline as the SQLite store so
// both backing stores honor the same contract.
type Store struct {
	mu     sync.Mutex
	sqlDB  *sql.DB
	upsert *sql.Stmt
}

// Open connects to Postgres with dsn and prepares a cache store.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, cache.New(cache.CodeInvalidArgument, "dsn is required")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "open postgres db", err)
	}
	store, err := New(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

// New prepares a cache store on an existing connection pool. The caller
// retains ownership of db's lifecycle unless the store came from Open.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, cache.New(cache.CodeInvalidArgument, "sql db is required")
	}
	if err := db.Ping(); err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "ping postgres db", err)
	}
	if err := ensureSchema(db); err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "ensure schema", err)
	}
	upsert, err := db.Prepare(`
INSERT INTO uuid_cache (name, uuid) VALUES ($1, $2)
ON CONFLICT (uuid) DO UPDATE SET name = excluded.name
`)
	if err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "prepare upsert statement", err)
	}
	return &Store{sqlDB: db, upsert: upsert}, nil
}

func ensureSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
CREATE TABLE IF NOT EXISTS uuid_cache (
	uuid CHAR(36) PRIMARY KEY,
	name VARCHAR(32) NOT NULL
)
`)
	if err != nil {
		return fmt.Errorf("create uuid_cache table: %w", err)
	}
	if _, err := sqlDB.Exec(`CREATE INDEX name_index ON uuid_cache (name)`); err != nil {
		if !isDuplicateRelation(err) {
			return fmt.Errorf("create name index: %w", err)
		}
	}
	return nil
}

func isDuplicateRelation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == duplicateRelationCode
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Close releases the prepared statement and the connection pool.
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
// for the same UUID. On failure the preceding entries remain applied.
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

	rendered := make([]string, 0, len(ids))
	for _, id := range ids {
		rendered = append(rendered, id.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT uuid, name FROM uuid_cache WHERE uuid = ANY($1)
`, pq.Array(rendered))
	if err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "query cache entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rawID, name string
		if err := rows.Scan(&rawID, &name); err != nil {
			return nil, cache.Wrap(cache.CodeStorage, "scan cache entry", err)
		}
		id, err := uuid.Parse(strings.TrimSpace(rawID))
		if err != nil {
			return nil, cache.Wrap(cache.CodeStorage, "parse stored uuid", err)
		}
		found[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, cache.Wrap(cache.CodeStorage, "iterate cache entries", err)
	}
	return found, nil
}

var _ cache.Cache = (*Store)(nil)
