package models

import (
	"fmt"
	"strings"
)

// EdgeKind selects which link table an edge is routed to.
type EdgeKind string

const (
	// EdgeReference is an object-to-object reference edge.
	EdgeReference EdgeKind = "reference"
	// EdgeClassification is an object-to-category edge.
	EdgeClassification EdgeKind = "classification"
)

// ValidEdgeKinds is the set of all valid edge kinds.
var ValidEdgeKinds = []EdgeKind{EdgeReference, EdgeClassification}

// IsValid returns true if the edge kind is recognized.
func (k EdgeKind) IsValid() bool {
	for _, v := range ValidEdgeKinds {
		if k == v {
			return true
		}
	}
	return false
}

// LinkRef is a directed link to another entity, as stored inside a
// document's structure or metadata.
type LinkRef struct {
	To    ObjectID
	Label string
	Title string
}

// CategoryKeySeparator joins classification id and category id in the
// composite link table key.
const CategoryKeySeparator = "##"

// CategoryRef names one category inside a classification.
type CategoryRef struct {
	ClassID string
	CategID string
}

// Key returns the composite classId##categId link table key.
func (c CategoryRef) Key() string {
	return c.ClassID + CategoryKeySeparator + c.CategID
}

// ParseCategoryKey splits a composite classId##categId key.
func ParseCategoryKey(key string) (CategoryRef, error) {
	class, categ, ok := strings.Cut(key, CategoryKeySeparator)
	if !ok || class == "" || categ == "" {
		return CategoryRef{}, fmt.Errorf("invalid category key %q", key)
	}
	return CategoryRef{ClassID: class, CategID: categ}, nil
}
