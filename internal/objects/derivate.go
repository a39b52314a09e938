package objects

import (
	"fmt"

	"github.com/depotkit/depot/internal/models"
)

// Derivate is a repository entity representing a bundle of stored content
// owned by one or more objects. The core keeps only the opaque content id;
// the payload itself lives in the content store.
type Derivate struct {
	ID         models.ObjectID
	Label      string
	Schema     string
	ContentID  string
	SourcePath string
	Owners     []models.LinkRef
	Metadata   models.Metadata
	Service    models.ServiceData
}

// NewDerivate creates a transient derivate.
func NewDerivate(id models.ObjectID, label, schema string) *Derivate {
	return &Derivate{ID: id, Label: label, Schema: schema}
}

// Validate checks the entity invariants: a valid derivate-typed id, a
// non-empty bounded label, a schema reference and at least one owner.
func (d *Derivate) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return err
	}
	if !d.ID.IsDerivate() {
		return fmt.Errorf("derivate %s must use the reserved derivate type", d.ID)
	}
	if d.Label == "" {
		return fmt.Errorf("derivate %s has an empty label", d.ID)
	}
	if len(d.Label) > MaxLabelLength {
		return fmt.Errorf("derivate %s label longer than %d characters", d.ID, MaxLabelLength)
	}
	if d.Schema == "" {
		return fmt.Errorf("derivate %s has no schema reference", d.ID)
	}
	if len(d.Owners) == 0 {
		return fmt.Errorf("derivate %s has no owning object", d.ID)
	}
	for _, owner := range d.Owners {
		if err := owner.To.Validate(); err != nil {
			return fmt.Errorf("derivate %s owner link: %w", d.ID, err)
		}
		if owner.To.IsDerivate() {
			return fmt.Errorf("derivate %s cannot be owned by derivate %s", d.ID, owner.To)
		}
	}
	if err := d.Metadata.Validate(); err != nil {
		return fmt.Errorf("derivate %s metadata: %w", d.ID, err)
	}
	return nil
}

// Document renders the derivate into its canonical document form.
func (d *Derivate) Document() *models.Document {
	return &models.Document{
		ID:       d.ID,
		Label:    d.Label,
		Schema:   d.Schema,
		Metadata: d.Metadata.Clone(),
		Service:  d.Service,
		Derivate: &models.DerivateData{
			ContentID:  d.ContentID,
			SourcePath: d.SourcePath,
			Owners:     append([]models.LinkRef(nil), d.Owners...),
		},
	}
}

// DerivateFromDocument rebuilds a derivate entity from its document form.
func DerivateFromDocument(doc *models.Document) (*Derivate, error) {
	if doc.Derivate == nil {
		return nil, fmt.Errorf("document %s is not a derivate", doc.ID)
	}
	return &Derivate{
		ID:         doc.ID,
		Label:      doc.Label,
		Schema:     doc.Schema,
		ContentID:  doc.Derivate.ContentID,
		SourcePath: doc.Derivate.SourcePath,
		Owners:     append([]models.LinkRef(nil), doc.Derivate.Owners...),
		Metadata:   doc.Metadata.Clone(),
		Service:    doc.Service,
	}, nil
}
