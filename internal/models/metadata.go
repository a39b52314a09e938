package models

import (
	"fmt"
	"time"
)

// ValueKind classifies the payload of a metadata value.
type ValueKind string

const (
	KindText           ValueKind = "text"
	KindDate           ValueKind = "date"
	KindISODate        ValueKind = "isodate"
	KindNumber         ValueKind = "number"
	KindBool           ValueKind = "boolean"
	KindObjectLink     ValueKind = "objectlink"
	KindClassification ValueKind = "classification"
)

// ValidValueKinds is the closed set of metadata value kinds.
var ValidValueKinds = []ValueKind{
	KindText,
	KindDate,
	KindISODate,
	KindNumber,
	KindBool,
	KindObjectLink,
	KindClassification,
}

// IsValid returns true if the value kind is recognized.
func (k ValueKind) IsValid() bool {
	for _, v := range ValidValueKinds {
		if k == v {
			return true
		}
	}
	return false
}

// MetaValue is one typed metadata value. Kind selects which payload field
// is meaningful; the other fields stay zero.
type MetaValue struct {
	Kind      ValueKind
	Lang      string
	Text      string       // KindText
	Date      time.Time    // KindDate, KindISODate
	Number    float64      // KindNumber
	Bool      bool         // KindBool
	Link      *LinkRef     // KindObjectLink
	Class     *CategoryRef // KindClassification
	Heritable bool
	Inherited bool
}

// Validate checks kind and kind-specific payload presence.
func (v MetaValue) Validate() error {
	if !v.Kind.IsValid() {
		return fmt.Errorf("unknown metadata value kind %q", v.Kind)
	}
	switch v.Kind {
	case KindObjectLink:
		if v.Link == nil || v.Link.To.IsZero() {
			return fmt.Errorf("objectlink value without a target")
		}
	case KindClassification:
		if v.Class == nil || v.Class.ClassID == "" || v.Class.CategID == "" {
			return fmt.Errorf("classification value without class and category ids")
		}
	}
	return nil
}

// Clone returns a deep copy of the value.
func (v MetaValue) Clone() MetaValue {
	c := v
	if v.Link != nil {
		link := *v.Link
		c.Link = &link
	}
	if v.Class != nil {
		class := *v.Class
		c.Class = &class
	}
	return c
}

// MetaElement is a named, ordered list of metadata values.
type MetaElement struct {
	Name   string
	Values []MetaValue
}

// Clone returns a deep copy of the element.
func (e MetaElement) Clone() MetaElement {
	values := make([]MetaValue, len(e.Values))
	for i, v := range e.Values {
		values[i] = v.Clone()
	}
	return MetaElement{Name: e.Name, Values: values}
}

// Metadata is the ordered metadata container of one entity.
type Metadata struct {
	Elements []MetaElement
}

// Element returns the element with the given name, or nil.
func (m *Metadata) Element(name string) *MetaElement {
	for i := range m.Elements {
		if m.Elements[i].Name == name {
			return &m.Elements[i]
		}
	}
	return nil
}

// Append adds a value to the named element, creating the element when it
// does not exist yet.
func (m *Metadata) Append(name string, v MetaValue) {
	if e := m.Element(name); e != nil {
		e.Values = append(e.Values, v)
		return
	}
	m.Elements = append(m.Elements, MetaElement{Name: name, Values: []MetaValue{v}})
}

// Set replaces the named element's values, creating the element when needed.
func (m *Metadata) Set(name string, values ...MetaValue) {
	if e := m.Element(name); e != nil {
		e.Values = values
		return
	}
	m.Elements = append(m.Elements, MetaElement{Name: name, Values: values})
}

// Remove drops the named element. Returns true when it was present.
func (m *Metadata) Remove(name string) bool {
	for i := range m.Elements {
		if m.Elements[i].Name == name {
			m.Elements = append(m.Elements[:i], m.Elements[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks every value in the container.
func (m *Metadata) Validate() error {
	for _, e := range m.Elements {
		if e.Name == "" {
			return fmt.Errorf("metadata element without a name")
		}
		for _, v := range e.Values {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("element %s: %w", e.Name, err)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the container.
func (m Metadata) Clone() Metadata {
	elements := make([]MetaElement, len(m.Elements))
	for i, e := range m.Elements {
		elements[i] = e.Clone()
	}
	return Metadata{Elements: elements}
}

// Heritable returns deep copies of the container's own heritable values,
// flagged inherited, ready to be merged into a descendant. Values that are
// themselves inherited are skipped; the ancestor walk visits their origin.
func (m Metadata) Heritable() []MetaElement {
	var out []MetaElement
	for _, e := range m.Elements {
		var values []MetaValue
		for _, v := range e.Values {
			if v.Heritable && !v.Inherited {
				c := v.Clone()
				c.Inherited = true
				values = append(values, c)
			}
		}
		if len(values) > 0 {
			out = append(out, MetaElement{Name: e.Name, Values: values})
		}
	}
	return out
}

// StripInherited removes every inherited value. Elements left empty are
// dropped.
func (m *Metadata) StripInherited() {
	kept := m.Elements[:0]
	for _, e := range m.Elements {
		values := e.Values[:0]
		for _, v := range e.Values {
			if !v.Inherited {
				values = append(values, v)
			}
		}
		e.Values = values
		if len(e.Values) > 0 {
			kept = append(kept, e)
		}
	}
	m.Elements = kept
}

// AddInherited merges ancestor heritable elements into the container.
// Callers strip stale inherited values first; inherited values are always
// recomputed from the ancestor chain, never edited in place.
func (m *Metadata) AddInherited(elements []MetaElement) {
	for _, e := range elements {
		for _, v := range e.Values {
			c := v.Clone()
			c.Inherited = true
			m.Append(e.Name, c)
		}
	}
}

// Own returns a copy of the container without inherited values.
func (m Metadata) Own() Metadata {
	c := m.Clone()
	c.StripInherited()
	return c
}

// Links returns every object-link value in the container.
func (m Metadata) Links() []LinkRef {
	var out []LinkRef
	for _, e := range m.Elements {
		for _, v := range e.Values {
			if v.Kind == KindObjectLink && v.Link != nil {
				out = append(out, *v.Link)
			}
		}
	}
	return out
}

// Classifications returns every classification value in the container.
func (m Metadata) Classifications() []CategoryRef {
	var out []CategoryRef
	for _, e := range m.Elements {
		for _, v := range e.Values {
			if v.Kind == KindClassification && v.Class != nil {
				out = append(out, *v.Class)
			}
		}
	}
	return out
}
