// Package cache defines the contract for persistent UUID-to-name caches.
package cache

import (
	"context"

	"github.com/google/uuid"
)

// Cache stores associations between UUIDs and the names last observed for
// them. Implementations are safe for concurrent use.
type Cache interface {
	// PutAll stores every association in entries, overwriting any existing
	// association for the same UUID. Whole-batch atomicity is not
	// guaranteed: on failure a prefix of the batch may already be applied.
	PutAll(ctx context.Context, entries map[uuid.UUID]string) error

	// GetAllPresent returns the subset of ids that have a stored
	// association, each mapped to its current name. Missing ids are
	// omitted from the result rather than reported as errors.
	GetAllPresent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Put stores a single association through c.
func Put(ctx context.Context, c Cache, id uuid.UUID, name string) error {
	return c.PutAll(ctx, map[uuid.UUID]string{id: name})
}

// GetIfPresent returns the stored name for id and whether one exists.
func GetIfPresent(ctx context.Context, c Cache, id uuid.UUID) (string, bool, error) {
	found, err := c.GetAllPresent(ctx, []uuid.UUID{id})
	if err != nil {
		return "", false, err
	}
	name, ok := found[id]
	return name, ok, nil
}

// ValidateIDs rejects a zero UUID anywhere in ids. Implementations call it
// before touching storage so malformed lookup sets never reach a query.
func ValidateIDs(ids []uuid.UUID) error {
	for _, id := range ids {
		if id == uuid.Nil {
			return New(CodeInvalidArgument, "zero uuid in lookup set")
		}
	}
	return nil
}

// ValidateEntries rejects a zero UUID anywhere in the keys of entries.
func ValidateEntries(entries map[uuid.UUID]string) error {
	for id := range entries {
		if id == uuid.Nil {
			return New(CodeInvalidArgument, "zero uuid in entries")
		}
	}
	return nil
}
