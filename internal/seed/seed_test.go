package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/storage"
)

func TestRun(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store))

	stores, err := store.ListStores(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, 6)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	// Every seeded deal must resolve in the composed feed.
	deals, err := store.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, deals, 3)
	for _, d := range deals {
		assert.NotEmpty(t, d.Store.Name)
		assert.NotEmpty(t, d.User.Username)
	}

	u, err := store.GetUserByUsername(ctx, "lisa_shops")
	require.NoError(t, err)
	require.NotNil(t, u)

	ok, err := store.IsFollowing(ctx, "lisa_shops", "user123")
	require.NoError(t, err)
	assert.True(t, ok)

	followers, err := store.ListFollowers(ctx, "user123")
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	lists, err := store.ListShoppingLists(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 3, lists[0].ItemCount)
}
