package store

import (
	"context"
	"sync"

	fwerrors "github.com/matzehuels/figwire/pkg/errors"
)

// MemoryStore is an in-memory Store for tests and single-process use.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]Record)}
}

// Put inserts or replaces the record under its ID.
func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[rec.ID] = rec
	return nil
}

// Get retrieves the record with the given ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[id]
	if !ok {
		return Record{}, fwerrors.New(fwerrors.ErrCodeFigureNotFound, "figure %q not found", id)
	}
	return rec, nil
}

// Delete removes the record with the given ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return fwerrors.New(fwerrors.ErrCodeFigureNotFound, "figure %q not found", id)
	}
	delete(s.recs, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
