// Package linktable is the durable edge index: directed reference and
// classification edges between identifiers, routed by edge kind to a
// pluggable backend.
package linktable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/depotkit/depot/internal/models"
)

// CountQuery narrows a destination count.
type CountQuery struct {
	// FromType restricts the count to edges whose source id carries this
	// type.
	FromType string
	// Prefix switches the destination match to fuzzy prefix mode, so a
	// classification count covers a category and all its sub-categories.
	Prefix bool
}

// Backend stores the edges of one kind.
type Backend interface {
	// Create inserts one edge. Inserting an existing edge is not an
	// error.
	Create(ctx context.Context, from, fromType, to string) error

	// Delete removes every outgoing edge of the source.
	Delete(ctx context.Context, from string) error

	// CountTo counts edges into the destination, optionally narrowed.
	CountTo(ctx context.Context, to string, q *CountQuery) (int, error)

	// SourcesTo returns the source ids of every edge into the
	// destination, for the active-link report.
	SourcesTo(ctx context.Context, to string) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// BackendFactory builds the backend for one edge kind.
type BackendFactory func(kind models.EdgeKind) (Backend, error)

// LinkTable routes edge operations to per-kind backends, lazily
// constructed under a mutex. Mutations with invalid input degrade to a
// logged no-op instead of failing, so bulk index rebuilds are never
// aborted by a single bad edge.
type LinkTable struct {
	mu       sync.Mutex
	backends map[models.EdgeKind]Backend
	factory  BackendFactory
	logger   *slog.Logger
}

// New creates a link table with the given backend factory.
func New(factory BackendFactory, logger *slog.Logger) *LinkTable {
	return &LinkTable{
		backends: make(map[models.EdgeKind]Backend),
		factory:  factory,
		logger:   logger,
	}
}

func (l *LinkTable) backend(kind models.EdgeKind) (Backend, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.backends[kind]; ok {
		return b, nil
	}
	b, err := l.factory(kind)
	if err != nil {
		return nil, fmt.Errorf("constructing %s backend: %w", kind, err)
	}
	l.backends[kind] = b
	l.logger.Debug("link backend initialized", "kind", kind)
	return b, nil
}

// AddEdge inserts one directed edge. For reference edges the destination
// is a formatted object id; for classification edges it is the composite
// classId##categId key.
func (l *LinkTable) AddEdge(ctx context.Context, kind models.EdgeKind, from models.ObjectID, to string) error {
	if !kind.IsValid() || from.IsZero() || to == "" {
		l.logger.Warn("ignoring invalid link table insert", "kind", kind, "from", from, "to", to)
		return nil
	}
	b, err := l.backend(kind)
	if err != nil {
		return err
	}
	if err := b.Create(ctx, from.String(), from.Type, to); err != nil {
		return fmt.Errorf("inserting %s edge %s -> %s: %w", kind, from, to, err)
	}
	return nil
}

// DeleteEdgesFrom removes every outgoing edge of the given kind for the
// source id.
func (l *LinkTable) DeleteEdgesFrom(ctx context.Context, kind models.EdgeKind, from models.ObjectID) error {
	if !kind.IsValid() || from.IsZero() {
		l.logger.Warn("ignoring invalid link table delete", "kind", kind, "from", from)
		return nil
	}
	b, err := l.backend(kind)
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, from.String()); err != nil {
		return fmt.Errorf("deleting %s edges of %s: %w", kind, from, err)
	}
	return nil
}

// CountTo counts edges of the given kind into the destination. A nil
// query counts exact matches over all source types.
func (l *LinkTable) CountTo(ctx context.Context, kind models.EdgeKind, to string, q *CountQuery) (int, error) {
	if !kind.IsValid() || to == "" {
		return 0, fmt.Errorf("invalid link table count: kind %q, to %q", kind, to)
	}
	b, err := l.backend(kind)
	if err != nil {
		return 0, err
	}
	return b.CountTo(ctx, to, q)
}

// SourcesTo returns the source ids of every edge of the given kind into
// the destination.
func (l *LinkTable) SourcesTo(ctx context.Context, kind models.EdgeKind, to string) ([]string, error) {
	if !kind.IsValid() || to == "" {
		return nil, fmt.Errorf("invalid link table source query: kind %q, to %q", kind, to)
	}
	b, err := l.backend(kind)
	if err != nil {
		return nil, err
	}
	return b.SourcesTo(ctx, to)
}

// Close closes every initialized backend.
func (l *LinkTable) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	for kind, b := range l.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s backend: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}
