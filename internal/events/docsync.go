package events

import (
	"context"
	"errors"

	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/xmltable"
)

// DocumentSynchronizer replays a document into the document store. Updated
// and repaired documents degrade to create when the id is absent, so a
// replay over a partially-built store converges.
type DocumentSynchronizer struct {
	docs *xmltable.XMLTable
}

// NewDocumentSynchronizer creates a document store synchronizer.
func NewDocumentSynchronizer(docs *xmltable.XMLTable) *DocumentSynchronizer {
	return &DocumentSynchronizer{docs: docs}
}

func (s *DocumentSynchronizer) Handle(ctx context.Context, ev Event) error {
	switch ev.Type {
	case Created:
		err := s.docs.Create(ctx, ev.Doc)
		if errors.Is(err, xmltable.ErrExists) {
			return s.docs.Update(ctx, ev.Doc)
		}
		return err
	case Updated, Repaired:
		err := s.docs.Update(ctx, ev.Doc)
		if errors.Is(err, models.ErrNotFound) {
			return s.docs.Create(ctx, ev.Doc)
		}
		return err
	case Deleted:
		return s.docs.Delete(ctx, ev.Doc.ID)
	}
	return nil
}
