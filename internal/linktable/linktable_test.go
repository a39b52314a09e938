package linktable

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotkit/depot/internal/models"
)

func init() {
	models.RegisterType("document")
	models.RegisterType("person")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTable(t *testing.T) *LinkTable {
	t.Helper()
	return New(NewMemoryFactory(), testLogger())
}

func TestLinkTable_AddAndCount(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	from := models.NewObjectID("depot", "document", 1)
	to := models.NewObjectID("depot", "document", 2).String()

	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, to))
	// Re-inserting the same edge is not an error and does not double-count.
	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, to))

	count, err := table.CountTo(ctx, models.EdgeReference, to, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLinkTable_KindsAreIsolated(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	from := models.NewObjectID("depot", "document", 1)

	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, "depot_document_0000000002"))
	require.NoError(t, table.AddEdge(ctx, models.EdgeClassification, from, "genre##novel"))

	count, err := table.CountTo(ctx, models.EdgeReference, "genre##novel", nil)
	require.NoError(t, err)
	assert.Zero(t, count, "classification edges do not leak into the reference table")
}

func TestLinkTable_CountToFromTypeFilter(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	to := "depot_document_0000000009"

	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, models.NewObjectID("depot", "document", 1), to))
	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, models.NewObjectID("depot", "person", 1), to))

	count, err := table.CountTo(ctx, models.EdgeReference, to, &CountQuery{FromType: "person"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = table.CountTo(ctx, models.EdgeReference, to, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLinkTable_CountToPrefix(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	require.NoError(t, table.AddEdge(ctx, models.EdgeClassification, models.NewObjectID("depot", "document", 1), "ddc##500"))
	require.NoError(t, table.AddEdge(ctx, models.EdgeClassification, models.NewObjectID("depot", "document", 2), "ddc##510"))
	require.NoError(t, table.AddEdge(ctx, models.EdgeClassification, models.NewObjectID("depot", "document", 3), "msc##510"))

	count, err := table.CountTo(ctx, models.EdgeClassification, "ddc##5", &CountQuery{Prefix: true})
	require.NoError(t, err)
	assert.Equal(t, 2, count, "prefix mode covers a category and its sub-categories")

	count, err = table.CountTo(ctx, models.EdgeClassification, "ddc##500", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLinkTable_SourcesToSorted(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	to := "depot_document_0000000009"

	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, models.NewObjectID("depot", "document", 3), to))
	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, models.NewObjectID("depot", "document", 1), to))

	sources, err := table.SourcesTo(ctx, models.EdgeReference, to)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"depot_document_0000000001",
		"depot_document_0000000003",
	}, sources)
}

func TestLinkTable_DeleteEdgesFrom(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	from := models.NewObjectID("depot", "document", 1)

	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, "depot_document_0000000002"))
	require.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, "depot_document_0000000003"))
	require.NoError(t, table.DeleteEdgesFrom(ctx, models.EdgeReference, from))

	count, err := table.CountTo(ctx, models.EdgeReference, "depot_document_0000000002", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLinkTable_InvalidMutationsDegradeToNoOp(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()
	from := models.NewObjectID("depot", "document", 1)

	assert.NoError(t, table.AddEdge(ctx, models.EdgeKind("bogus"), from, "depot_document_0000000002"))
	assert.NoError(t, table.AddEdge(ctx, models.EdgeReference, models.ObjectID{}, "depot_document_0000000002"))
	assert.NoError(t, table.AddEdge(ctx, models.EdgeReference, from, ""))
	assert.NoError(t, table.DeleteEdgesFrom(ctx, models.EdgeKind("bogus"), from))

	count, err := table.CountTo(ctx, models.EdgeReference, "depot_document_0000000002", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLinkTable_InvalidQueriesFail(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	_, err := table.CountTo(ctx, models.EdgeKind("bogus"), "x", nil)
	assert.Error(t, err)
	_, err = table.CountTo(ctx, models.EdgeReference, "", nil)
	assert.Error(t, err)
	_, err = table.SourcesTo(ctx, models.EdgeKind("bogus"), "x")
	assert.Error(t, err)
}
