package index

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and embedded use.
type MemoryStore struct {
	mu          sync.RWMutex
	projections map[string]Projection
}

// NewMemoryStore creates an empty in-memory projection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projections: make(map[string]Projection)}
}

func (s *MemoryStore) Create(_ context.Context, p Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projections[p.ID] = cloneProjection(p)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p Projection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projections[p.ID] = cloneProjection(p)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projections, id)
	return nil
}

// Get returns the stored projection, for test assertions.
func (s *MemoryStore) Get(id string) (Projection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projections[id]
	return p, ok
}

// Len returns the number of stored projections.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projections)
}

func (s *MemoryStore) Close() error {
	return nil
}

func cloneProjection(p Projection) Projection {
	fields := make(map[string]string, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	p.Fields = fields
	return p
}
