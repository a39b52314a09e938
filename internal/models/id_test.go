package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RegisterType("document")
	RegisterType("person")
}

func TestParseID_Valid(t *testing.T) {
	id, err := ParseID("depot_document_0000000042")
	require.NoError(t, err)
	assert.Equal(t, "depot", id.Project)
	assert.Equal(t, "document", id.Type)
	assert.Equal(t, int64(42), id.Number)
}

func TestParseID_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", MaxIDLength+1)},
		{"url-unsafe character", "depot_document_1!"},
		{"space", "depot document_1"},
		{"two segments", "depot_document"},
		{"four segments", "depot_sub_document_1"},
		{"empty project", "_document_1"},
		{"empty number", "depot_document_"},
		{"negative number", "depot_document_-1"},
		{"non-numeric number", "depot_document_abc"},
		{"unregistered type", "depot_nosuchtype_0000000001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseID(tc.input)
			require.Error(t, err)
			var invalid *InvalidIDError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tc.input, invalid.Value)
		})
	}
}

func TestObjectID_RoundTrip(t *testing.T) {
	in := "depot_document_0000000042"
	id, err := ParseID(in)
	require.NoError(t, err)
	assert.Equal(t, in, id.String())
}

func TestObjectID_StringPadsNumber(t *testing.T) {
	id := NewObjectID("depot", "document", 7)
	assert.Equal(t, "depot_document_0000000007", id.String())
}

func TestObjectID_StringKeepsWideNumbers(t *testing.T) {
	id := NewObjectID("depot", "document", 123456789012)
	assert.Equal(t, "depot_document_123456789012", id.String())
}

func TestSetNumberWidth(t *testing.T) {
	defer SetNumberWidth(DefaultNumberWidth)

	SetNumberWidth(4)
	assert.Equal(t, 4, NumberWidth())
	assert.Equal(t, "depot_document_0007", NewObjectID("depot", "document", 7).String())

	// Out-of-range widths are ignored.
	SetNumberWidth(0)
	assert.Equal(t, 4, NumberWidth())
	SetNumberWidth(33)
	assert.Equal(t, 4, NumberWidth())
}

func TestObjectID_Base(t *testing.T) {
	id := NewObjectID("depot", "document", 1)
	assert.Equal(t, "depot_document", id.Base())
}

func TestObjectID_IsDerivate(t *testing.T) {
	assert.True(t, NewObjectID("depot", TypeDerivate, 1).IsDerivate())
	assert.False(t, NewObjectID("depot", "document", 1).IsDerivate())
}

func TestObjectID_Validate(t *testing.T) {
	assert.NoError(t, NewObjectID("depot", "document", 1).Validate())
	assert.Error(t, ObjectID{}.Validate())
	assert.Error(t, NewObjectID("depot", "nosuchtype", 1).Validate())
	assert.Error(t, NewObjectID("de pot", "document", 1).Validate())
}

func TestTypeRegistered(t *testing.T) {
	assert.True(t, TypeRegistered(TypeDerivate), "derivate type is always registered")
	assert.False(t, TypeRegistered("never-registered"))
	RegisterType("institution")
	assert.True(t, TypeRegistered("institution"))
}

func TestMustParseID_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustParseID("not an id") })
}
