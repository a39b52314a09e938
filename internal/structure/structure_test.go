package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotkit/depot/internal/models"
)

func init() {
	models.RegisterType("document")
}

func link(number int64) models.LinkRef {
	return models.LinkRef{To: models.NewObjectID("depot", "document", number)}
}

func derivateLink(number int64) models.LinkRef {
	return models.LinkRef{To: models.NewObjectID("depot", models.TypeDerivate, number)}
}

func TestStructure_SetParentOnce(t *testing.T) {
	s := New()
	require.NoError(t, s.SetParent(link(1)))
	require.NotNil(t, s.Parent())
	assert.Equal(t, int64(1), s.Parent().To.Number)

	err := s.SetParent(link(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleParents)
	assert.Equal(t, int64(1), s.Parent().To.Number, "original parent survives the rejected set")

	s.ClearParent()
	assert.Nil(t, s.Parent())
	require.NoError(t, s.SetParent(link(2)))
}

func TestStructure_AddChildIdempotent(t *testing.T) {
	s := New()
	assert.True(t, s.AddChild(link(1)))
	assert.False(t, s.AddChild(link(1)), "repeated add is a no-op")
	assert.True(t, s.AddChild(link(2)))
	assert.Len(t, s.Children(), 2)
}

func TestStructure_RemoveChild(t *testing.T) {
	s := New()
	s.AddChild(link(1))
	s.AddChild(link(2))
	assert.True(t, s.RemoveChild(models.NewObjectID("depot", "document", 1)))
	assert.False(t, s.RemoveChild(models.NewObjectID("depot", "document", 1)))
	require.Len(t, s.Children(), 1)
	assert.Equal(t, int64(2), s.Children()[0].To.Number)
}

func TestStructure_DerivateLinksAreTyped(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDerivate(derivateLink(1)))
	err := s.AddDerivate(link(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDerivate)
	assert.Len(t, s.Derivates(), 1)

	assert.True(t, s.RemoveDerivate(models.NewObjectID("depot", models.TypeDerivate, 1)))
	assert.Empty(t, s.Derivates())
}

func TestStructure_DataRoundTrip(t *testing.T) {
	s := New()
	require.NoError(t, s.SetParent(link(1)))
	s.AddChild(link(2))
	s.AddChild(link(3))
	require.NoError(t, s.AddDerivate(derivateLink(1)))

	rebuilt := FromData(s.Data())
	require.NotNil(t, rebuilt.Parent())
	assert.Equal(t, s.Parent().To, rebuilt.Parent().To)
	assert.Equal(t, s.Children(), rebuilt.Children())
	assert.Equal(t, s.Derivates(), rebuilt.Derivates())
}

func TestStructure_ChildrenReturnsCopy(t *testing.T) {
	s := New()
	s.AddChild(link(1))
	children := s.Children()
	children[0].To = models.NewObjectID("depot", "document", 99)
	assert.Equal(t, int64(1), s.Children()[0].To.Number)
}

func TestStructure_Validate(t *testing.T) {
	s := New()
	require.NoError(t, s.SetParent(link(1)))
	s.AddChild(link(2))
	require.NoError(t, s.AddDerivate(derivateLink(1)))
	assert.NoError(t, s.Validate())

	// Duplicate children reachable through FromData are rejected.
	dup := FromData(models.StructureData{Children: []models.LinkRef{link(2), link(2)}})
	assert.Error(t, dup.Validate())

	bad := FromData(models.StructureData{Derivates: []models.LinkRef{link(5)}})
	assert.ErrorIs(t, bad.Validate(), ErrNotDerivate)
}

func TestStructure_Inherited(t *testing.T) {
	s := New()
	assert.Empty(t, s.Inherited())
	block := []models.MetaElement{{Name: "title"}}
	s.SetInherited(block)
	assert.Equal(t, block, s.Inherited())
	s.SetInherited(nil)
	assert.Empty(t, s.Inherited())
}
