package classification

import (
	"context"
	"sync"
)

// MemoryResolver is an in-memory Resolver for tests and embedded use.
type MemoryResolver struct {
	mu      sync.RWMutex
	classes map[string]map[string]struct{}
}

// NewMemoryResolver creates an empty in-memory resolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{classes: make(map[string]map[string]struct{})}
}

// Register adds categories to a classification.
func (r *MemoryResolver) Register(classID string, categIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.classes[classID] == nil {
		r.classes[classID] = make(map[string]struct{})
	}
	for _, categID := range categIDs {
		r.classes[classID][categID] = struct{}{}
	}
}

func (r *MemoryResolver) Exists(_ context.Context, classID, categID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	categories, ok := r.classes[classID]
	if !ok {
		return false, nil
	}
	_, ok = categories[categID]
	return ok, nil
}

func (r *MemoryResolver) Close() error {
	return nil
}
