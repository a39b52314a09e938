// Package index is the indexable-projection collaborator: a flattened,
// searchable view of each document, kept current ahead of the document
// store in the fixed write order.
package index

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/pkg/xmlutil"
)

// Projection is the typed, flattened view of one document.
type Projection struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Project    string            `json:"project"`
	Label      string            `json:"label"`
	CreatedAt  time.Time         `json:"created_at"`
	ModifiedAt time.Time         `json:"modified_at"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Store is the narrow contract of the pluggable projection backend.
type Store interface {
	// Create indexes a new projection.
	Create(ctx context.Context, p Projection) error

	// Update replaces an existing projection.
	Update(ctx context.Context, p Projection) error

	// Delete removes the projection of the given id.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Project flattens a document into its searchable projection. Metadata
// values are rendered to text under element-name keys; repeated values get
// a positional suffix.
func Project(doc *models.Document) Projection {
	p := Projection{
		ID:         doc.ID.String(),
		Type:       doc.ID.Type,
		Project:    doc.ID.Project,
		Label:      doc.Label,
		CreatedAt:  doc.Service.CreatedAt,
		ModifiedAt: doc.Service.ModifiedAt,
		Fields:     make(map[string]string),
	}
	for _, e := range doc.Metadata.Elements {
		for i, v := range e.Values {
			key := e.Name
			if i > 0 {
				key = fmt.Sprintf("%s.%d", e.Name, i)
			}
			p.Fields[key] = renderValue(v)
		}
	}
	return p
}

func renderValue(v models.MetaValue) string {
	switch v.Kind {
	case models.KindText:
		return v.Text
	case models.KindDate, models.KindISODate:
		return xmlutil.FormatTime(v.Date)
	case models.KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case models.KindBool:
		return strconv.FormatBool(v.Bool)
	case models.KindObjectLink:
		if v.Link != nil {
			return v.Link.To.String()
		}
	case models.KindClassification:
		if v.Class != nil {
			return v.Class.Key()
		}
	}
	return ""
}
