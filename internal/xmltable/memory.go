package xmltable

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/depotkit/depot/internal/models"
)

// MemoryBackend is an in-memory Backend for tests and embedded use.
type MemoryBackend struct {
	mu      sync.Mutex
	docs    map[string][]byte
	numbers map[string]int64 // id -> sequence number
	seqs    map[string]int64 // base -> last allocated
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs:    make(map[string][]byte),
		numbers: make(map[string]int64),
		seqs:    make(map[string]int64),
	}
}

// NewMemoryFactory returns a factory handing out one fresh memory backend
// per type id.
func NewMemoryFactory() BackendFactory {
	return func(string) (Backend, error) {
		return NewMemoryBackend(), nil
	}
}

func (b *MemoryBackend) Insert(_ context.Context, id string, number int64, raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	b.docs[id] = append([]byte(nil), raw...)
	b.numbers[id] = number
	return nil
}

func (b *MemoryBackend) Update(_ context.Context, id string, raw []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.docs[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	b.docs[id] = append([]byte(nil), raw...)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.docs, id)
	delete(b.numbers, id)
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	raw, ok := b.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return append([]byte(nil), raw...), nil
}

func (b *MemoryBackend) Exists(_ context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.docs[id]
	return ok, nil
}

func (b *MemoryBackend) ListIDs(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.docs))
	for id := range b.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// NextNumber is a mutex-guarded counter reconciled against the highest
// stored number on first allocation for a base.
func (b *MemoryBackend) NextNumber(_ context.Context, base string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seeded := b.seqs[base]; !seeded {
		var max int64
		for id, n := range b.numbers {
			if strings.HasPrefix(id, base+"_") && n > max {
				max = n
			}
		}
		b.seqs[base] = max
	}
	b.seqs[base]++
	return b.seqs[base], nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
