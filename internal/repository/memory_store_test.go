package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "kanban_board_1")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte(`{"columns":[]}`)
	require.NoError(t, store.Set(ctx, "kanban_board_1", value))

	// the store keeps its own copy
	value[0] = 'x'
	got, err := store.Get(ctx, "kanban_board_1")
	require.NoError(t, err)
	assert.Equal(t, `{"columns":[]}`, string(got))

	require.NoError(t, store.Set(ctx, "kanban_board_1", []byte(`{}`)))
	got, err = store.Get(ctx, "kanban_board_1")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(got))

	require.NoError(t, store.Delete(ctx, "kanban_board_1"))
	require.NoError(t, store.Delete(ctx, "kanban_board_1"))
	_, err = store.Get(ctx, "kanban_board_1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
}
