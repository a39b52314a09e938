package classification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryResolver(t *testing.T) {
	r := NewMemoryResolver()
	ctx := context.Background()

	ok, err := r.Exists(ctx, "genre", "novel")
	require.NoError(t, err)
	assert.False(t, ok)

	r.Register("genre", "novel", "poetry")

	ok, err = r.Exists(ctx, "genre", "novel")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, "genre", "drama")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.Exists(ctx, "ddc", "novel")
	require.NoError(t, err)
	assert.False(t, ok, "categories are scoped to their classification")

	assert.NoError(t, r.Close())
}
