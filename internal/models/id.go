package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// TypeDerivate is the reserved type id for derivate entities.
const TypeDerivate = "derivate"

// MaxIDLength is the maximum formatted length of an ObjectID.
const MaxIDLength = 64

// DefaultNumberWidth is the default zero-pad width of the number segment.
const DefaultNumberWidth = 10

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// InvalidIDError reports a string that cannot be parsed into an ObjectID.
type InvalidIDError struct {
	Value  string
	Reason string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid object id %q: %s", e.Value, e.Reason)
}

func invalidID(value, reason string) error {
	return &InvalidIDError{Value: value, Reason: reason}
}

// registry guards the set of known type ids and the number pad width.
// The derivate type is always registered.
var registry = struct {
	mu    sync.RWMutex
	types map[string]struct{}
	width int
}{
	types: map[string]struct{}{TypeDerivate: {}},
	width: DefaultNumberWidth,
}

// RegisterType adds a type id to the set of parseable types.
func RegisterType(typeID string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.types[typeID] = struct{}{}
}

// TypeRegistered reports whether the type id has been registered.
func TypeRegistered(typeID string) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	_, ok := registry.types[typeID]
	return ok
}

// SetNumberWidth sets the zero-pad width used when formatting ids.
// Widths outside [1, 32] are ignored.
func SetNumberWidth(w int) {
	if w < 1 || w > 32 {
		return
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.width = w
}

// NumberWidth returns the current zero-pad width.
func NumberWidth() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.width
}

// ObjectID identifies one repository entity. Equality is structural:
// two ids are equal when project, type and number all match.
type ObjectID struct {
	Project string
	Type    string
	Number  int64
}

// NewObjectID builds an id from its three parts without validation.
func NewObjectID(project, typeID string, number int64) ObjectID {
	return ObjectID{Project: project, Type: typeID, Number: number}
}

// ParseID parses and validates the textual form projectId_typeId_number.
func ParseID(s string) (ObjectID, error) {
	if s == "" {
		return ObjectID{}, invalidID(s, "empty")
	}
	if len(s) > MaxIDLength {
		return ObjectID{}, invalidID(s, fmt.Sprintf("longer than %d characters", MaxIDLength))
	}
	for _, r := range s {
		if !isUnreserved(r) {
			return ObjectID{}, invalidID(s, fmt.Sprintf("character %q is not URL-safe", r))
		}
	}
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return ObjectID{}, invalidID(s, "expected three underscore-separated segments")
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ObjectID{}, invalidID(s, "empty segment")
	}
	number, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || number < 0 {
		return ObjectID{}, invalidID(s, "trailing segment is not a non-negative number")
	}
	if !TypeRegistered(parts[1]) {
		return ObjectID{}, invalidID(s, fmt.Sprintf("unregistered type %q", parts[1]))
	}
	return ObjectID{Project: parts[0], Type: parts[1], Number: number}, nil
}

// MustParseID is ParseID that panics on error, for tests and fixtures.
func MustParseID(s string) ObjectID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String formats the id with the configured zero-pad width.
func (id ObjectID) String() string {
	return fmt.Sprintf("%s_%s_%0*d", id.Project, id.Type, NumberWidth(), id.Number)
}

// Base returns the projectId_typeId prefix shared by all numbers of a type.
func (id ObjectID) Base() string {
	return id.Project + "_" + id.Type
}

// IsZero reports whether the id is the unset zero value.
func (id ObjectID) IsZero() bool {
	return id == ObjectID{}
}

// Validate checks the id parts against the same rules ParseID applies.
func (id ObjectID) Validate() error {
	if id.IsZero() {
		return invalidID("", "empty")
	}
	_, err := ParseID(id.String())
	return err
}

// IsDerivate reports whether the id carries the reserved derivate type.
func (id ObjectID) IsDerivate() bool {
	return id.Type == TypeDerivate
}

// isUnreserved reports whether r survives a percent-encoding round trip
// unchanged (RFC 3986 unreserved set).
func isUnreserved(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == '.' || r == '_' || r == '~':
		return true
	}
	return false
}
