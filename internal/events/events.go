// Package events distributes lifecycle transitions to observers that keep
// derived projections current. Synchronizers re-derive their projection
// from the document alone, so index maintenance can be replayed
// idempotently without the full entity orchestration.
package events

import (
	"context"
	"log/slog"

	"github.com/depotkit/depot/internal/models"
)

// Type is a lifecycle transition.
type Type string

const (
	Created  Type = "created"
	Updated  Type = "updated"
	Deleted  Type = "deleted"
	Repaired Type = "repaired"
)

// Event carries one lifecycle transition and the document it applies to.
type Event struct {
	Type Type
	Doc  *models.Document
}

// Handler reacts to one lifecycle event.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// Bus dispatches events to subscribed handlers in subscription order.
// Handler failures are logged and do not stop later handlers.
type Bus struct {
	handlers []Handler
	logger   *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe appends a handler. Not safe for concurrent use with Dispatch;
// subscribe during startup.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Dispatch delivers the event to every handler.
func (b *Bus) Dispatch(ctx context.Context, ev Event) {
	for _, h := range b.handlers {
		if err := h.Handle(ctx, ev); err != nil {
			b.logger.Error("event handler failed", "event", ev.Type, "id", ev.Doc.ID, "error", err)
		}
	}
}
