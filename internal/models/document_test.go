package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureObjectDocument() *Document {
	parent := NewObjectID("depot", "document", 1)
	child := NewObjectID("depot", "document", 3)
	derivate := NewObjectID("depot", TypeDerivate, 1)
	target := NewObjectID("depot", "person", 5)

	doc := &Document{
		ID:     NewObjectID("depot", "document", 2),
		Label:  "A monograph",
		Schema: "datamodel-document.xsd",
		Structure: StructureData{
			Parent:    &LinkRef{To: parent, Title: "series"},
			Children:  []LinkRef{{To: child, Label: "chapter 1"}},
			Derivates: []LinkRef{{To: derivate, Label: "fulltext"}},
		},
		Service: ServiceData{
			CreatedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			ModifiedAt: time.Date(2024, 6, 2, 11, 30, 0, 0, time.UTC),
			Flags:      []ServiceFlag{{Type: "status", Value: "published"}},
		},
	}
	doc.Metadata.Append("title", MetaValue{Kind: KindText, Lang: "en", Text: "A monograph", Heritable: true})
	doc.Metadata.Append("published", MetaValue{Kind: KindISODate, Date: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)})
	doc.Metadata.Append("pages", MetaValue{Kind: KindNumber, Number: 312})
	doc.Metadata.Append("open-access", MetaValue{Kind: KindBool, Bool: true})
	doc.Metadata.Append("author", MetaValue{Kind: KindObjectLink, Link: &LinkRef{To: target, Title: "the author"}})
	doc.Metadata.Append("genre", MetaValue{Kind: KindClassification, Class: &CategoryRef{ClassID: "genre", CategID: "novel"}})
	return doc
}

func TestDocument_MarshalParseRoundTrip(t *testing.T) {
	doc := fixtureObjectDocument()

	raw, err := doc.Marshal()
	require.NoError(t, err)

	parsed, err := ParseDocument(raw)
	require.NoError(t, err)

	assert.Equal(t, doc.ID, parsed.ID)
	assert.Equal(t, doc.Label, parsed.Label)
	assert.Equal(t, doc.Schema, parsed.Schema)
	require.NotNil(t, parsed.Structure.Parent)
	assert.Equal(t, doc.Structure.Parent.To, parsed.Structure.Parent.To)
	assert.Equal(t, doc.Structure.Children, parsed.Structure.Children)
	assert.Equal(t, doc.Structure.Derivates, parsed.Structure.Derivates)
	assert.Equal(t, doc.Service.Flags, parsed.Service.Flags)
	assert.True(t, doc.Service.CreatedAt.Equal(parsed.Service.CreatedAt))
	assert.True(t, doc.Service.ModifiedAt.Equal(parsed.Service.ModifiedAt))
	assert.Nil(t, parsed.Derivate)

	title := parsed.Metadata.Element("title")
	require.NotNil(t, title)
	require.Len(t, title.Values, 1)
	assert.Equal(t, "A monograph", title.Values[0].Text)
	assert.True(t, title.Values[0].Heritable)

	author := parsed.Metadata.Element("author")
	require.NotNil(t, author)
	require.NotNil(t, author.Values[0].Link)
	assert.Equal(t, "depot_person_0000000005", author.Values[0].Link.To.String())

	genre := parsed.Metadata.Element("genre")
	require.NotNil(t, genre)
	require.NotNil(t, genre.Values[0].Class)
	assert.Equal(t, "genre##novel", genre.Values[0].Class.Key())

	// The canonical form is stable across a round trip.
	again, err := parsed.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(raw), string(again))
}

func TestDocument_MarshalParseDerivate(t *testing.T) {
	owner := NewObjectID("depot", "document", 1)
	doc := &Document{
		ID:     NewObjectID("depot", TypeDerivate, 7),
		Label:  "fulltext pdf",
		Schema: "datamodel-derivate.xsd",
		Derivate: &DerivateData{
			ContentID:  "c0ffee",
			SourcePath: "/tmp/upload.pdf",
			Owners:     []LinkRef{{To: owner, Label: "main"}},
		},
	}

	raw, err := doc.Marshal()
	require.NoError(t, err)
	parsed, err := ParseDocument(raw)
	require.NoError(t, err)

	require.NotNil(t, parsed.Derivate)
	assert.Equal(t, "c0ffee", parsed.Derivate.ContentID)
	assert.Equal(t, "/tmp/upload.pdf", parsed.Derivate.SourcePath)
	require.Len(t, parsed.Derivate.Owners, 1)
	assert.Equal(t, owner, parsed.Derivate.Owners[0].To)
}

func TestParseDocument_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not xml", "{}"},
		{"invalid id", `<depotobject ID="nope" label="x" schema="s"></depotobject>`},
		{"unregistered link target", `<depotobject ID="depot_document_0000000001" label="x" schema="s"><metadata><element name="rel"><value kind="objectlink" href="depot_ghost_0000000001"/></element></metadata></depotobject>`},
		{"unknown value kind", `<depotobject ID="depot_document_0000000001" label="x" schema="s"><metadata><element name="rel"><value kind="mystery">x</value></element></metadata></depotobject>`},
		{"bad number value", `<depotobject ID="depot_document_0000000001" label="x" schema="s"><metadata><element name="n"><value kind="number">twelve</value></element></metadata></depotobject>`},
		{"bad date", `<depotobject ID="depot_document_0000000001" label="x" schema="s"><service><createdate>yesterday</createdate></service></depotobject>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestDocument_ReferenceTargets(t *testing.T) {
	doc := fixtureObjectDocument()
	targets := doc.ReferenceTargets()
	require.Len(t, targets, 1)
	assert.Equal(t, "depot_person_0000000005", targets[0].String())

	// Derivate owners count as reference targets too.
	owner := NewObjectID("depot", "document", 1)
	der := &Document{
		ID:       NewObjectID("depot", TypeDerivate, 1),
		Derivate: &DerivateData{Owners: []LinkRef{{To: owner}}},
	}
	targets = der.ReferenceTargets()
	require.Len(t, targets, 1)
	assert.Equal(t, owner, targets[0])
}

func TestDocument_ClassificationTargets(t *testing.T) {
	doc := fixtureObjectDocument()
	categs := doc.ClassificationTargets()
	require.Len(t, categs, 1)
	assert.Equal(t, "genre##novel", categs[0].Key())
}
