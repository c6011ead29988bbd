package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Cache for callers that need no durability.
type Memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]string
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[uuid.UUID]string),
	}
}

// PutAll stores every association in entries, overwriting existing ones.
func (m *Memory) PutAll(ctx context.Context, entries map[uuid.UUID]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateEntries(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, name := range entries {
		m.entries[id] = name
	}
	return nil
}

// GetAllPresent returns the stored associations for the requested ids.
func (m *Memory) GetAllPresent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateIDs(ids); err != nil {
		return nil, err
	}

	found := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range ids {
		if name, ok := m.entries[id]; ok {
			found[id] = name
		}
	}
	return found, nil
}

var _ Cache = (*Memory)(nil)
