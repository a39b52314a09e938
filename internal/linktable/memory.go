package linktable

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/depotkit/depot/internal/models"
)

// MemoryBackend is an in-memory Backend for tests and embedded use.
type MemoryBackend struct {
	mu    sync.Mutex
	edges map[string]map[string]struct{} // from -> set of to
	types map[string]string              // from -> type
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		edges: make(map[string]map[string]struct{}),
		types: make(map[string]string),
	}
}

// NewMemoryFactory returns a factory handing out one fresh memory backend
// per edge kind.
func NewMemoryFactory() BackendFactory {
	return func(models.EdgeKind) (Backend, error) {
		return NewMemoryBackend(), nil
	}
}

func (b *MemoryBackend) Create(_ context.Context, from, fromType, to string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.edges[from] == nil {
		b.edges[from] = make(map[string]struct{})
	}
	b.edges[from][to] = struct{}{}
	b.types[from] = fromType
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, from string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.edges, from)
	delete(b.types, from)
	return nil
}

func (b *MemoryBackend) CountTo(_ context.Context, to string, q *CountQuery) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for from, targets := range b.edges {
		if q != nil && q.FromType != "" && b.types[from] != q.FromType {
			continue
		}
		for target := range targets {
			if matches(target, to, q != nil && q.Prefix) {
				count++
			}
		}
	}
	return count, nil
}

func (b *MemoryBackend) SourcesTo(_ context.Context, to string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sources []string
	for from, targets := range b.edges {
		if _, ok := targets[to]; ok {
			sources = append(sources, from)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

func matches(target, to string, prefix bool) bool {
	if prefix {
		return strings.HasPrefix(target, to)
	}
	return target == to
}
