// Package structure maintains the in-memory structural position of an
// object: its parent link, ordered child links, derivate links and the
// metadata block inherited from its ancestor chain.
package structure

import (
	"errors"
	"fmt"

	"github.com/depotkit/depot/internal/models"
)

var (
	// ErrMultipleParents is returned when a parent is set on an object
	// that already has one.
	ErrMultipleParents = errors.New("multiple inheritance request: parent already set")

	// ErrNotDerivate is returned when a derivate link targets an id that
	// does not carry the reserved derivate type.
	ErrNotDerivate = errors.New("derivate link target must have the derivate type")
)

// Structure tracks the structural links of one object. Mutations here never
// touch other entities; propagation happens through the repository update
// lifecycle.
type Structure struct {
	parent    *models.LinkRef
	children  []models.LinkRef
	derivates []models.LinkRef
	inherited []models.MetaElement
}

// New returns an empty structure.
func New() *Structure {
	return &Structure{}
}

// FromData rebuilds a structure from its serialized form.
func FromData(d models.StructureData) *Structure {
	s := &Structure{}
	if d.Parent != nil {
		parent := *d.Parent
		s.parent = &parent
	}
	s.children = append(s.children, d.Children...)
	s.derivates = append(s.derivates, d.Derivates...)
	return s
}

// Data returns the serializable form of the structure.
func (s *Structure) Data() models.StructureData {
	d := models.StructureData{
		Children:  append([]models.LinkRef(nil), s.children...),
		Derivates: append([]models.LinkRef(nil), s.derivates...),
	}
	if s.parent != nil {
		parent := *s.parent
		d.Parent = &parent
	}
	return d
}

// SetParent sets the parent link. At most one parent may be set; a second
// call without ClearParent in between is an error.
func (s *Structure) SetParent(ref models.LinkRef) error {
	if s.parent != nil {
		return fmt.Errorf("%w (current parent %s, requested %s)", ErrMultipleParents, s.parent.To, ref.To)
	}
	s.parent = &ref
	return nil
}

// ClearParent removes the parent link.
func (s *Structure) ClearParent() {
	s.parent = nil
}

// Parent returns a copy of the parent link, or nil when the object is a
// root.
func (s *Structure) Parent() *models.LinkRef {
	if s.parent == nil {
		return nil
	}
	parent := *s.parent
	return &parent
}

// AddChild appends a child link. Returns false without modifying anything
// when the target is already a child, so repeated adds stay idempotent.
func (s *Structure) AddChild(ref models.LinkRef) bool {
	for _, c := range s.children {
		if c.To == ref.To {
			return false
		}
	}
	s.children = append(s.children, ref)
	return true
}

// RemoveChild removes the child link with the given target. Returns true
// when a link was removed.
func (s *Structure) RemoveChild(id models.ObjectID) bool {
	for i, c := range s.children {
		if c.To == id {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return true
		}
	}
	return false
}

// Children returns a copy of the child links in insertion order.
func (s *Structure) Children() []models.LinkRef {
	return append([]models.LinkRef(nil), s.children...)
}

// AddDerivate appends a derivate link. The target must carry the reserved
// derivate type.
func (s *Structure) AddDerivate(ref models.LinkRef) error {
	if !ref.To.IsDerivate() {
		return fmt.Errorf("%w: %s", ErrNotDerivate, ref.To)
	}
	s.derivates = append(s.derivates, ref)
	return nil
}

// RemoveDerivate removes the first derivate link with the given target.
// Returns true when a link was removed.
func (s *Structure) RemoveDerivate(id models.ObjectID) bool {
	for i, d := range s.derivates {
		if d.To == id {
			s.derivates = append(s.derivates[:i], s.derivates[i+1:]...)
			return true
		}
	}
	return false
}

// Derivates returns a copy of the derivate links.
func (s *Structure) Derivates() []models.LinkRef {
	return append([]models.LinkRef(nil), s.derivates...)
}

// SetInherited replaces the cached ancestor metadata block. The block is
// recomputed by the repository whenever the ancestor chain changes.
func (s *Structure) SetInherited(elements []models.MetaElement) {
	s.inherited = elements
}

// Inherited returns the cached ancestor metadata block.
func (s *Structure) Inherited() []models.MetaElement {
	return s.inherited
}

// Validate checks the structural invariants: valid link targets, no
// duplicate children, derivate links typed as derivates.
func (s *Structure) Validate() error {
	if s.parent != nil {
		if err := s.parent.To.Validate(); err != nil {
			return fmt.Errorf("parent link: %w", err)
		}
	}
	seen := make(map[models.ObjectID]struct{}, len(s.children))
	for _, c := range s.children {
		if err := c.To.Validate(); err != nil {
			return fmt.Errorf("child link: %w", err)
		}
		if _, dup := seen[c.To]; dup {
			return fmt.Errorf("duplicate child link %s", c.To)
		}
		seen[c.To] = struct{}{}
	}
	for _, d := range s.derivates {
		if err := d.To.Validate(); err != nil {
			return fmt.Errorf("derivate link: %w", err)
		}
		if !d.To.IsDerivate() {
			return fmt.Errorf("%w: %s", ErrNotDerivate, d.To)
		}
	}
	return nil
}
