package content

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestDirStore_StoreAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(dir, testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	payload := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(payload, []byte("payload bytes"), 0o644))

	contentID, err := store.Store(ctx, payload)
	require.NoError(t, err)
	require.NotEmpty(t, contentID)

	stored, err := os.ReadFile(filepath.Join(dir, contentID))
	require.NoError(t, err)
	assert.Equal(t, "payload bytes", string(stored))

	require.NoError(t, store.Delete(ctx, contentID))
	_, err = os.Stat(filepath.Join(dir, contentID))
	assert.True(t, os.IsNotExist(err))
}

func TestDirStore_DistinctContentIDs(t *testing.T) {
	store, err := NewDirStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	payload := filepath.Join(t.TempDir(), "upload.bin")
	require.NoError(t, os.WriteFile(payload, []byte("same bytes"), 0o644))

	first, err := store.Store(ctx, payload)
	require.NoError(t, err)
	second, err := store.Store(ctx, payload)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestDirStore_MissingSource(t *testing.T) {
	store, err := NewDirStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	_, err = store.Store(context.Background(), "/nonexistent/path")
	assert.Error(t, err)
}

func TestDirStore_DeleteUnknownIsNoOp(t *testing.T) {
	store, err := NewDirStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "never-stored"))
	assert.NoError(t, store.Delete(context.Background(), ""))
}
