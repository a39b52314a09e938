package events

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotkit/depot/internal/linktable"
	"github.com/depotkit/depot/internal/models"
	"github.com/depotkit/depot/internal/xmltable"
)

func init() {
	models.RegisterType("document")
	models.RegisterType("person")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordingHandler struct {
	seen []Type
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, ev Event) error {
	h.seen = append(h.seen, ev.Type)
	return h.err
}

func testDoc(number int64) *models.Document {
	return &models.Document{
		ID:     models.NewObjectID("depot", "document", number),
		Label:  "doc",
		Schema: "datamodel-document.xsd",
	}
}

func TestBus_DispatchOrderAndErrorIsolation(t *testing.T) {
	bus := NewBus(testLogger())
	failing := &recordingHandler{err: errors.New("boom")}
	second := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(second)

	bus.Dispatch(context.Background(), Event{Type: Created, Doc: testDoc(1)})
	bus.Dispatch(context.Background(), Event{Type: Deleted, Doc: testDoc(1)})

	assert.Equal(t, []Type{Created, Deleted}, failing.seen)
	assert.Equal(t, []Type{Created, Deleted}, second.seen, "a failing handler does not starve later handlers")
}

func TestLinkSynchronizer_ReplayReplacesStaleEdges(t *testing.T) {
	links := linktable.New(linktable.NewMemoryFactory(), testLogger())
	sync := NewLinkSynchronizer(links)
	ctx := context.Background()

	doc := testDoc(1)
	oldTarget := models.NewObjectID("depot", "person", 1)
	doc.Metadata.Append("author", models.MetaValue{Kind: models.KindObjectLink, Link: &models.LinkRef{To: oldTarget}})
	doc.Metadata.Append("genre", models.MetaValue{Kind: models.KindClassification, Class: &models.CategoryRef{ClassID: "genre", CategID: "novel"}})
	require.NoError(t, sync.Replay(ctx, doc))

	count, err := links.CountTo(ctx, models.EdgeReference, oldTarget.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = links.CountTo(ctx, models.EdgeClassification, "genre##novel", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Point the document elsewhere and replay: stale edges must vanish.
	newTarget := models.NewObjectID("depot", "person", 2)
	doc.Metadata.Set("author", models.MetaValue{Kind: models.KindObjectLink, Link: &models.LinkRef{To: newTarget}})
	doc.Metadata.Remove("genre")
	require.NoError(t, sync.Replay(ctx, doc))

	count, err = links.CountTo(ctx, models.EdgeReference, oldTarget.String(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	count, err = links.CountTo(ctx, models.EdgeReference, newTarget.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = links.CountTo(ctx, models.EdgeClassification, "genre##novel", nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLinkSynchronizer_ReplayIsIdempotent(t *testing.T) {
	links := linktable.New(linktable.NewMemoryFactory(), testLogger())
	sync := NewLinkSynchronizer(links)
	ctx := context.Background()

	doc := testDoc(1)
	target := models.NewObjectID("depot", "person", 1)
	doc.Metadata.Append("author", models.MetaValue{Kind: models.KindObjectLink, Link: &models.LinkRef{To: target}})

	require.NoError(t, sync.Replay(ctx, doc))
	require.NoError(t, sync.Replay(ctx, doc))

	count, err := links.CountTo(ctx, models.EdgeReference, target.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLinkSynchronizer_HandleDeletedClearsEdges(t *testing.T) {
	links := linktable.New(linktable.NewMemoryFactory(), testLogger())
	sync := NewLinkSynchronizer(links)
	ctx := context.Background()

	doc := testDoc(1)
	target := models.NewObjectID("depot", "person", 1)
	doc.Metadata.Append("author", models.MetaValue{Kind: models.KindObjectLink, Link: &models.LinkRef{To: target}})
	require.NoError(t, sync.Handle(ctx, Event{Type: Created, Doc: doc}))
	require.NoError(t, sync.Handle(ctx, Event{Type: Deleted, Doc: doc}))

	count, err := links.CountTo(ctx, models.EdgeReference, target.String(), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDocumentSynchronizer_Converges(t *testing.T) {
	docs, err := xmltable.New(xmltable.NewMemoryFactory(), 16, testLogger())
	require.NoError(t, err)
	sync := NewDocumentSynchronizer(docs)
	ctx := context.Background()

	doc := testDoc(1)

	// Updated on an absent id degrades to create.
	require.NoError(t, sync.Handle(ctx, Event{Type: Updated, Doc: doc}))
	got, err := docs.Retrieve(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "doc", got.Label)

	// Created on an existing id degrades to update.
	changed := testDoc(1)
	changed.Label = "changed"
	require.NoError(t, sync.Handle(ctx, Event{Type: Created, Doc: changed}))
	got, err = docs.Retrieve(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Label)

	require.NoError(t, sync.Handle(ctx, Event{Type: Deleted, Doc: doc}))
	_, err = docs.Retrieve(ctx, doc.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
