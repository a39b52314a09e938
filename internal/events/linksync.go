package events

import (
	"context"
	"errors"

	"github.com/depotkit/depot/internal/linktable"
	"github.com/depotkit/depot/internal/models"
)

// LinkSynchronizer replays a document's edges into the link table. Every
// write path is delete-then-create, so a replayed or repaired document
// never leaks partial edge sets.
type LinkSynchronizer struct {
	links *linktable.LinkTable
}

// NewLinkSynchronizer creates a link table synchronizer.
func NewLinkSynchronizer(links *linktable.LinkTable) *LinkSynchronizer {
	return &LinkSynchronizer{links: links}
}

func (s *LinkSynchronizer) Handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case Created, Updated, Repaired:
		return s.Replay(ctx, ev.Doc)
	case Deleted:
		return s.Clear(ctx, ev.Doc.ID)
	}
	return nil
}

// Replay removes stale edges for the document's id and inserts the edges
// derived from its current reference and classification values.
func (s *LinkSynchronizer) Replay(ctx context.Context, doc *models.Document) error {
	if err := s.Clear(ctx, doc.ID); err != nil {
		return err
	}
	var errs []error
	for _, to := range doc.ReferenceTargets() {
		if err := s.links.AddEdge(ctx, models.EdgeReference, doc.ID, to.String()); err != nil {
			errs = append(errs, err)
		}
	}
	for _, categ := range doc.ClassificationTargets() {
		if err := s.links.AddEdge(ctx, models.EdgeClassification, doc.ID, categ.Key()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear removes every outgoing edge of the id, both kinds.
func (s *LinkSynchronizer) Clear(ctx context.Context, id models.ObjectID) error {
	return errors.Join(
		s.links.DeleteEdgesFrom(ctx, models.EdgeReference, id),
		s.links.DeleteEdgesFrom(ctx, models.EdgeClassification, id),
	)
}
