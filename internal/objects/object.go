// Package objects holds the base entities of the repository and the
// lifecycle engine that keeps their three stored representations
// consistent.
package objects

import (
	"fmt"

	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/structure"
)

// MaxLabelLength bounds entity labels.
const MaxLabelLength = 256

// Object is a top-level repository entity: metadata plus a structural
// position in the parent/child/derivate graph.
type Object struct {
	ID        models.ObjectID
	Label     string
	Schema    string
	Structure *structure.Structure
	Metadata  models.Metadata
	Service   models.ServiceData
}

// NewObject creates a transient object with an empty structure.
func NewObject(id models.ObjectID, label, schema string) *Object {
	return &Object{
		ID:        id,
		Label:     label,
		Schema:    schema,
		Structure: structure.New(),
	}
}

// Validate checks the entity invariants: a valid non-derivate id, a
// non-empty bounded label, a schema reference, and a valid structure.
func (o *Object) Validate() error {
	if err := o.ID.Validate(); err != nil {
		return err
	}
	if o.ID.IsDerivate() {
		return fmt.Errorf("object %s must not use the reserved derivate type", o.ID)
	}
	if o.Label == "" {
		return fmt.Errorf("object %s has an empty label", o.ID)
	}
	if len(o.Label) > MaxLabelLength {
		return fmt.Errorf("object %s label longer than %d characters", o.ID, MaxLabelLength)
	}
	if o.Schema == "" {
		return fmt.Errorf("object %s has no schema reference", o.ID)
	}
	if o.Structure == nil {
		return fmt.Errorf("object %s has no structure", o.ID)
	}
	if err := o.Structure.Validate(); err != nil {
		return fmt.Errorf("object %s structure: %w", o.ID, err)
	}
	if err := o.Metadata.Validate(); err != nil {
		return fmt.Errorf("object %s metadata: %w", o.ID, err)
	}
	return nil
}

// Document renders the object into its canonical document form.
func (o *Object) Document() *models.Document {
	return &models.Document{
		ID:        o.ID,
		Label:     o.Label,
		Schema:    o.Schema,
		Structure: o.Structure.Data(),
		Metadata:  o.Metadata.Clone(),
		Service:   o.Service,
	}
}

// ObjectFromDocument rebuilds an object entity from its document form.
func ObjectFromDocument(doc *models.Document) (*Object, error) {
	if doc.Derivate != nil {
		return nil, fmt.Errorf("document %s is a derivate, not an object", doc.ID)
	}
	return &Object{
		ID:        doc.ID,
		Label:     doc.Label,
		Schema:    doc.Schema,
		Structure: structure.FromData(doc.Structure),
		Metadata:  doc.Metadata.Clone(),
		Service:   doc.Service,
	}, nil
}
