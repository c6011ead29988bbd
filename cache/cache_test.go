package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// recordingCache counts batch operations so delegation can be asserted.
type recordingCache struct {
	putCalls int
	getCalls int
	lastPut  map[uuid.UUID]string
	lastGet  []uuid.UUID
	result   map[uuid.UUID]string
}

func (r *recordingCache) PutAll(ctx context.Context, entries map[uuid.UUID]string) error {
	r.putCalls++
	r.lastPut = entries
	return nil
}

func (r *recordingCache) GetAllPresent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	r.getCalls++
	r.lastGet = ids
	return r.result, nil
}

func TestPutDelegatesToPutAll(t *testing.T) {
	rec := &recordingCache{}
	id := uuid.MustParse("11111111-1111-4111-8111-111111111111")

	if err := Put(context.Background(), rec, id, "Alice"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if rec.putCalls != 1 {
		t.Fatalf("put calls = %d, want 1", rec.putCalls)
	}
	if rec.lastPut[id] != "Alice" {
		t.Fatalf("last put = %v", rec.lastPut)
	}
}

func TestGetIfPresentDelegatesToGetAllPresent(t *testing.T) {
	id := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	rec := &recordingCache{result: map[uuid.UUID]string{id: "Alice"}}

	name, ok, err := GetIfPresent(context.Background(), rec, id)
	if err != nil {
		t.Fatalf("get if present: %v", err)
	}
	if !ok || name != "Alice" {
		t.Fatalf("name = %q ok = %v, want Alice", name, ok)
	}
	if rec.getCalls != 1 {
		t.Fatalf("get calls = %d, want 1", rec.getCalls)
	}
	if len(rec.lastGet) != 1 || rec.lastGet[0] != id {
		t.Fatalf("last get = %v", rec.lastGet)
	}
}

func TestGetIfPresentReportsAbsence(t *testing.T) {
	rec := &recordingCache{result: map[uuid.UUID]string{}}
	id := uuid.MustParse("11111111-1111-4111-8111-111111111111")

	name, ok, err := GetIfPresent(context.Background(), rec, id)
	if err != nil {
		t.Fatalf("get if present: %v", err)
	}
	if ok || name != "" {
		t.Fatalf("name = %q ok = %v, want absent", name, ok)
	}
}
