// Package xmltable is the durable store of the canonical serialized
// document per identifier. Documents are routed by type id to a backend
// table; a bounded LRU cache of parsed documents sits in front of reads.
package xmltable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/depotkit/depot/internal/models"
)

// ErrExists is returned when creating a document whose id is already
// present.
var ErrExists = errors.New("document already exists")

// DefaultCacheSize bounds the parsed-document cache when no capacity is
// configured.
const DefaultCacheSize = 512

// Backend stores raw serialized documents for one object type.
type Backend interface {
	// Insert stores a new document. The number is the id's sequence
	// number, kept alongside the raw bytes for allocation queries.
	Insert(ctx context.Context, id string, number int64, raw []byte) error

	// Update replaces the raw bytes of an existing document.
	Update(ctx context.Context, id string, raw []byte) error

	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error

	// Get returns the raw bytes, or models.ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// Exists reports whether the id is present.
	Exists(ctx context.Context, id string) (bool, error)

	// ListIDs returns every stored id.
	ListIDs(ctx context.Context) ([]string, error)

	// NextNumber atomically allocates the next free sequence number for
	// the given projectId_typeId base.
	NextNumber(ctx context.Context, base string) (int64, error)

	// Close releases backend resources.
	Close() error
}

// BackendFactory builds the backend for one type id.
type BackendFactory func(typeID string) (Backend, error)

// XMLTable routes document operations to per-type backends. Backends are
// constructed lazily on first use, guarded by a mutex so concurrent first
// access cannot produce duplicate handles. The cache holds parsed
// documents and is only ever written together with the store.
type XMLTable struct {
	mu       sync.Mutex
	backends map[string]Backend
	factory  BackendFactory
	cache    *lru.Cache[string, *models.Document]
	logger   *slog.Logger
}

// New creates a document store with the given backend factory and cache
// capacity. A capacity below 1 falls back to DefaultCacheSize.
func New(factory BackendFactory, cacheSize int, logger *slog.Logger) (*XMLTable, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *models.Document](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}
	return &XMLTable{
		backends: make(map[string]Backend),
		factory:  factory,
		cache:    cache,
		logger:   logger,
	}, nil
}

func (t *XMLTable) backend(typeID string) (Backend, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b, ok := t.backends[typeID]; ok {
		return b, nil
	}
	b, err := t.factory(typeID)
	if err != nil {
		return nil, fmt.Errorf("constructing backend for type %s: %w", typeID, err)
	}
	t.backends[typeID] = b
	t.logger.Debug("document backend initialized", "type", typeID)
	return b, nil
}

// Create stores a new document and refreshes the cache entry.
func (t *XMLTable) Create(ctx context.Context, doc *models.Document) error {
	b, err := t.backend(doc.ID.Type)
	if err != nil {
		return err
	}
	key := doc.ID.String()
	exists, err := b.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("checking %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	raw, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := b.Insert(ctx, key, doc.ID.Number, raw); err != nil {
		return fmt.Errorf("inserting %s: %w", key, err)
	}
	t.cache.Add(key, doc)
	return nil
}

// Update replaces an existing document and refreshes the cache entry.
func (t *XMLTable) Update(ctx context.Context, doc *models.Document) error {
	b, err := t.backend(doc.ID.Type)
	if err != nil {
		return err
	}
	key := doc.ID.String()
	raw, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := b.Update(ctx, key, raw); err != nil {
		return fmt.Errorf("updating %s: %w", key, err)
	}
	t.cache.Add(key, doc)
	return nil
}

// Delete removes a document and evicts its cache entry.
func (t *XMLTable) Delete(ctx context.Context, id models.ObjectID) error {
	b, err := t.backend(id.Type)
	if err != nil {
		return err
	}
	key := id.String()
	if err := b.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	t.cache.Remove(key)
	return nil
}

// Retrieve returns the parsed document, serving repeated reads from the
// cache. Absent ids return models.ErrNotFound.
func (t *XMLTable) Retrieve(ctx context.Context, id models.ObjectID) (*models.Document, error) {
	key := id.String()
	if doc, ok := t.cache.Get(key); ok {
		return doc, nil
	}
	b, err := t.backend(id.Type)
	if err != nil {
		return nil, err
	}
	raw, err := b.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	doc, err := models.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}
	t.cache.Add(key, doc)
	return doc, nil
}

// Exists reports whether the id is present.
func (t *XMLTable) Exists(ctx context.Context, id models.ObjectID) (bool, error) {
	if t.cache.Contains(id.String()) {
		return true, nil
	}
	b, err := t.backend(id.Type)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, id.String())
}

// ListIDs returns every stored id of the given type.
func (t *XMLTable) ListIDs(ctx context.Context, typeID string) ([]models.ObjectID, error) {
	b, err := t.backend(typeID)
	if err != nil {
		return nil, err
	}
	keys, err := b.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing type %s: %w", typeID, err)
	}
	ids := make([]models.ObjectID, 0, len(keys))
	for _, key := range keys {
		id, err := models.ParseID(key)
		if err != nil {
			t.logger.Warn("skipping unparseable stored id", "id", key, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// NextFreeID allocates the next free id for the project and type. The
// allocation is an atomic increment in the backend, never a read-then-add,
// so concurrent callers receive distinct, strictly increasing numbers.
func (t *XMLTable) NextFreeID(ctx context.Context, project, typeID string) (models.ObjectID, error) {
	if !models.TypeRegistered(typeID) {
		return models.ObjectID{}, &models.InvalidIDError{Value: project + "_" + typeID, Reason: "unregistered type"}
	}
	b, err := t.backend(typeID)
	if err != nil {
		return models.ObjectID{}, err
	}
	number, err := b.NextNumber(ctx, project+"_"+typeID)
	if err != nil {
		return models.ObjectID{}, fmt.Errorf("allocating number for %s_%s: %w", project, typeID, err)
	}
	return models.NewObjectID(project, typeID, number), nil
}

// Close closes every initialized backend.
func (t *XMLTable) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var errs []error
	for typeID, b := range t.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing backend %s: %w", typeID, err))
		}
	}
	return errors.Join(errs...)
}
