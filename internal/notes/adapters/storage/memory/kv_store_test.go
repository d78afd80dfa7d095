package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeeper/internal/notes/adapters/storage/memory"
)

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewKVStore()

	value, err := store.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Empty(t, value, "absent key reads as empty")

	require.NoError(t, store.Set(ctx, "notes", `[{"id":"1"}]`))
	require.NoError(t, store.Set(ctx, "notes", `[]`))

	value, err = store.Get(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, `[]`, value, "set overwrites")

	require.NoError(t, store.Set(ctx, "folders", `[]`))
	require.NoError(t, store.Close())
	value, err = store.Get(ctx, "folders")
	require.NoError(t, err)
	assert.Empty(t, value)
}
