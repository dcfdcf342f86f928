package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/models"
	"dealfeed/internal/storage"
)

func seedDeal(t *testing.T, store *storage.MemoryStore) *models.Deal {
	t.Helper()
	ctx := context.Background()

	st := &models.Store{Name: "Safeway", Location: "Uptown"}
	require.NoError(t, store.CreateStore(ctx, st))
	cat := &models.Category{Name: "Beverages"}
	require.NoError(t, store.CreateCategory(ctx, cat))
	require.NoError(t, store.CreateUser(ctx, &models.User{Username: "sarah_deals", Password: "hashed"}))

	deal := &models.Deal{UserID: "sarah_deals", StoreID: st.ID, CategoryID: cat.ID, Title: "Cold Brew 2-Pack"}
	require.NoError(t, store.CreateDeal(ctx, deal))
	return deal
}

func TestToggleLike(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDealService(store)
	ctx := context.Background()
	deal := seedDeal(t, store)

	updated, liked, err := svc.ToggleLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, updated.Likes)

	updated, liked, err = svc.ToggleLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, updated.Likes)

	_, _, err = svc.ToggleLike(ctx, 999, "user123")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestToggleLike_ConcurrentSamePair(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDealService(store)
	ctx := context.Background()
	deal := seedDeal(t, store)

	const toggles = 10
	var wg sync.WaitGroup
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.ToggleLike(ctx, deal.ID, "user123")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of serialized toggles always lands back on zero.
	count, err := store.CountDealLikes(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := store.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Likes)
}

func TestListDealsForUser(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDealService(store)
	ctx := context.Background()
	deal := seedDeal(t, store)

	_, _, err := svc.ToggleLike(ctx, deal.ID, "user123")
	require.NoError(t, err)

	deals, err := svc.ListDealsForUser(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.True(t, deals[0].IsLiked)
	assert.Equal(t, 1, deals[0].Likes)

	deals, err = svc.ListDealsForUser(ctx, "someone_else")
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.False(t, deals[0].IsLiked)
}

func TestGetDealForUser(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDealService(store)
	ctx := context.Background()
	deal := seedDeal(t, store)

	view, err := svc.GetDealForUser(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.Equal(t, "Cold Brew 2-Pack", view.Title)
	assert.Equal(t, "Safeway", view.Store.Name)
	assert.False(t, view.IsLiked)

	_, err = svc.GetDealForUser(ctx, 999, "user123")
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestAddComment(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDealService(store)
	ctx := context.Background()
	deal := seedDeal(t, store)

	c := &models.Comment{DealID: deal.ID, UserID: "sarah_deals", Content: "great find"}
	require.NoError(t, svc.AddComment(ctx, c))
	assert.NotZero(t, c.ID)

	err := svc.AddComment(ctx, &models.Comment{DealID: 999, UserID: "sarah_deals", Content: "nope"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
