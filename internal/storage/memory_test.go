package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func seedUser(t *testing.T, s *MemoryStore, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "hashed"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedStoreAndCategory(t *testing.T, s *MemoryStore) (*models.Store, *models.Category) {
	t.Helper()
	ctx := context.Background()
	st := &models.Store{Name: "Whole Foods Market", Location: "Downtown"}
	require.NoError(t, s.CreateStore(ctx, st))
	cat := &models.Category{Name: "Fruits & Vegetables"}
	require.NoError(t, s.CreateCategory(ctx, cat))
	return st, cat
}

func TestMemoryStore_StoresAndCategories(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stores, err := s.ListStores(ctx)
	require.NoError(t, err)
	assert.Empty(t, stores)

	st := &models.Store{Name: "Trader Joe's", Location: "Midtown", LogoURL: strPtr("https://example.com/tj.png")}
	require.NoError(t, s.CreateStore(ctx, st))
	assert.Equal(t, uint(1), st.ID)

	got, err := s.GetStore(ctx, st.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Trader Joe's", got.Name)

	missing, err := s.GetStore(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	cat := &models.Category{Name: "Dairy", Color: strPtr("#4F9DDE")}
	require.NoError(t, s.CreateCategory(ctx, cat))
	assert.Equal(t, uint(1), cat.ID)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Dairy", cats[0].Name)
}

func TestMemoryStore_DealComposition(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	user := seedUser(t, s, "sarah_deals")

	deal := &models.Deal{
		UserID:        user.Username,
		StoreID:       st.ID,
		CategoryID:    cat.ID,
		Title:         "Organic Strawberries",
		Description:   "Fresh organic strawberries, 1 lb",
		OriginalPrice: strPtr("$4.99"),
		SalePrice:     strPtr("$2.49"),
	}
	require.NoError(t, s.CreateDeal(ctx, deal))
	assert.Equal(t, uint(1), deal.ID)
	assert.Equal(t, 0, deal.Likes)
	assert.False(t, deal.CreatedAt.IsZero())

	views, err := s.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Organic Strawberries", views[0].Title)
	assert.Equal(t, "$2.49", *views[0].SalePrice)
	assert.Equal(t, st.Name, views[0].Store.Name)
	assert.Equal(t, cat.Name, views[0].Category.Name)
	assert.Equal(t, user.Username, views[0].User.Username)
	assert.False(t, views[0].IsLiked)
}

func TestMemoryStore_DealJoinFiltering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	seedUser(t, s, "mike_saves")

	good := &models.Deal{UserID: "mike_saves", StoreID: st.ID, CategoryID: cat.ID, Title: "Good"}
	require.NoError(t, s.CreateDeal(ctx, good))

	// References a store that was never created.
	dangling := &models.Deal{UserID: "mike_saves", StoreID: 777, CategoryID: cat.ID, Title: "Dangling"}
	require.NoError(t, s.CreateDeal(ctx, dangling))

	// References an unknown author.
	ghost := &models.Deal{UserID: "nobody", StoreID: st.ID, CategoryID: cat.ID, Title: "Ghost"}
	require.NoError(t, s.CreateDeal(ctx, ghost))

	views, err := s.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Good", views[0].Title)

	// Unresolved deals are still reachable directly by id.
	raw, err := s.GetDeal(ctx, dangling.ID)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, "Dangling", raw.Title)
}

func TestMemoryStore_DealOrderingNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	seedUser(t, s, "user123")

	for _, title := range []string{"first", "second", "third"} {
		d := &models.Deal{UserID: "user123", StoreID: st.ID, CategoryID: cat.ID, Title: title}
		require.NoError(t, s.CreateDeal(ctx, d))
		time.Sleep(2 * time.Millisecond)
	}

	views, err := s.ListDeals(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "third", views[0].Title)
	assert.Equal(t, "second", views[1].Title)
	assert.Equal(t, "first", views[2].Title)
}

func TestMemoryStore_LikesAreDuplicateTolerant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	seedUser(t, s, "user123")
	deal := &models.Deal{UserID: "user123", StoreID: st.ID, CategoryID: cat.ID, Title: "Milk"}
	require.NoError(t, s.CreateDeal(ctx, deal))

	like, err := s.GetLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.Nil(t, like)

	require.NoError(t, s.CreateLike(ctx, &models.Like{DealID: deal.ID, UserID: "user123"}))
	require.NoError(t, s.CreateLike(ctx, &models.Like{DealID: deal.ID, UserID: "user123"}))

	n, err := s.CountDealLikes(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	like, err = s.GetLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	require.NotNil(t, like)
	assert.Equal(t, uint(1), like.ID)

	// One delete clears every row for the pair.
	deleted, err := s.DeleteLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.True(t, deleted)

	n, err = s.CountDealLikes(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	deleted, err = s.DeleteLike(ctx, deal.ID, "user123")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStore_UpdateDealLikes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	seedUser(t, s, "user123")
	deal := &models.Deal{UserID: "user123", StoreID: st.ID, CategoryID: cat.ID, Title: "Eggs"}
	require.NoError(t, s.CreateDeal(ctx, deal))

	updated, err := s.UpdateDealLikes(ctx, deal.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 7, updated.Likes)

	got, err := s.GetDeal(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Likes)

	updated, err = s.UpdateDealLikes(ctx, 999, 1)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	u := seedUser(t, s, "lisa_shops")
	assert.Equal(t, uint(1), u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byName, err := s.GetUserByUsername(ctx, "lisa_shops")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "lisa_shops", byID.Username)

	missing, err := s.GetUserByUsername(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_FollowIsDirected(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedUser(t, s, "alice")
	seedUser(t, s, "bob")

	edge, err := s.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, edge)
	firstID := edge.ID

	ok, err := s.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	// The reverse direction is a separate edge that does not exist.
	ok, err = s.IsFollowing(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-following replaces the edge under a fresh id.
	edge, err = s.Follow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Greater(t, edge.ID, firstID)

	followers, err := s.ListFollowers(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	removed, err := s.Unfollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Unfollow(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_ProfileCountsAreLive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	seedUser(t, s, "alice")
	seedUser(t, s, "bob")
	seedUser(t, s, "carol")

	_, err := s.Follow(ctx, "bob", "alice")
	require.NoError(t, err)
	_, err = s.Follow(ctx, "carol", "alice")
	require.NoError(t, err)
	_, err = s.Follow(ctx, "alice", "bob")
	require.NoError(t, err)

	following, err := s.ListFollowing(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "alice", following[0].Username)
	assert.Equal(t, 2, following[0].FollowersCount)
	assert.Equal(t, 1, following[0].FollowingCount)

	// Counts are recomputed on every read, not cached.
	_, err = s.Unfollow(ctx, "carol", "alice")
	require.NoError(t, err)

	following, err = s.ListFollowing(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, 1, following[0].FollowersCount)
}

func TestMemoryStore_CommentsOldestFirst(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	st, cat := seedStoreAndCategory(t, s)
	seedUser(t, s, "user123")
	deal := &models.Deal{UserID: "user123", StoreID: st.ID, CategoryID: cat.ID, Title: "Bread"}
	require.NoError(t, s.CreateDeal(ctx, deal))

	for i := 1; i <= 3; i++ {
		c := &models.Comment{DealID: deal.ID, UserID: "user123", Content: fmt.Sprintf("comment %d", i)}
		require.NoError(t, s.CreateComment(ctx, c))
		time.Sleep(2 * time.Millisecond)
	}
	// Author unknown, dropped from the composed view.
	require.NoError(t, s.CreateComment(ctx, &models.Comment{DealID: deal.ID, UserID: "ghost", Content: "invisible"}))

	comments, err := s.ListComments(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "comment 1", comments[0].Content)
	assert.Equal(t, "comment 3", comments[2].Content)
	assert.Equal(t, "user123", comments[0].User.Username)

	deleted, err := s.DeleteComment(ctx, comments[0].ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	comments, err = s.ListComments(ctx, deal.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	deleted, err = s.DeleteComment(ctx, 999)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStore_ChatConversation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	msgs := []models.ChatMessage{
		{FromUserID: "alice", ToUserID: "bob", Content: "saw the strawberry deal?"},
		{FromUserID: "bob", ToUserID: "alice", Content: "already grabbed two"},
		{FromUserID: "alice", ToUserID: "carol", Content: "different thread"},
	}
	for i := range msgs {
		require.NoError(t, s.CreateChatMessage(ctx, &msgs[i]))
		time.Sleep(2 * time.Millisecond)
	}

	// The pair filter is symmetric in its arguments.
	conv, err := s.ListChatMessages(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "saw the strawberry deal?", conv[0].Content)
	assert.Nil(t, conv[0].ReadAt)

	ok, err := s.MarkMessageRead(ctx, conv[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	conv, err = s.ListChatMessages(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, conv[0].ReadAt)

	ok, err = s.MarkMessageRead(ctx, 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ShoppingListLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	list := &models.ShoppingList{Name: "Weekly Groceries", UserID: "user123"}
	require.NoError(t, s.CreateShoppingList(ctx, list))
	assert.Equal(t, uint(1), list.ID)

	// Quantity defaults to 1 when the caller leaves it unset.
	milk := &models.ShoppingListItem{ListID: list.ID, Name: "Milk"}
	require.NoError(t, s.CreateShoppingListItem(ctx, milk))
	assert.Equal(t, 1, milk.Quantity)
	time.Sleep(2 * time.Millisecond)

	eggs := &models.ShoppingListItem{ListID: list.ID, Name: "Eggs", Quantity: 2, Price: strPtr("$3.99")}
	require.NoError(t, s.CreateShoppingListItem(ctx, eggs))

	view, err := s.GetShoppingList(ctx, list.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 2, view.ItemCount)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "Eggs", view.Items[0].Name)
	assert.Equal(t, "Milk", view.Items[1].Name)

	lists, err := s.ListShoppingLists(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, 2, lists[0].ItemCount)

	lists, err = s.ListShoppingLists(ctx, "someone_else")
	require.NoError(t, err)
	assert.Empty(t, lists)

	updated, err := s.UpdateShoppingList(ctx, list.ID, models.ShoppingListUpdate{IsShared: boolPtr(true)})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsShared)
	assert.Equal(t, "Weekly Groceries", updated.Name)
}

func TestMemoryStore_ItemPartialUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	list := &models.ShoppingList{Name: "Pantry", UserID: "user123"}
	require.NoError(t, s.CreateShoppingList(ctx, list))

	item := &models.ShoppingListItem{ListID: list.ID, Name: "Rice", Quantity: 1}
	require.NoError(t, s.CreateShoppingListItem(ctx, item))

	updated, err := s.UpdateShoppingListItem(ctx, item.ID, models.ShoppingListItemUpdate{
		Quantity:    intPtr(3),
		IsCompleted: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 3, updated.Quantity)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, "Rice", updated.Name)
	assert.Nil(t, updated.Price)

	updated, err = s.UpdateShoppingListItem(ctx, 999, models.ShoppingListItemUpdate{Name: strPtr("x")})
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestMemoryStore_DeleteListCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	list := &models.ShoppingList{Name: "Party", UserID: "user123", IsShared: true}
	require.NoError(t, s.CreateShoppingList(ctx, list))
	require.NoError(t, s.CreateShoppingListItem(ctx, &models.ShoppingListItem{ListID: list.ID, Name: "Chips"}))
	require.NoError(t, s.CreateShoppingListItem(ctx, &models.ShoppingListItem{ListID: list.ID, Name: "Salsa"}))

	grant, err := s.ShareShoppingList(ctx, list.ID, "sarah_deals", true)
	require.NoError(t, err)
	require.NotNil(t, grant)
	assert.True(t, grant.CanEdit)

	shared, err := s.ListSharedLists(ctx, "sarah_deals")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, 2, shared[0].ItemCount)

	deleted, err := s.DeleteShoppingList(ctx, list.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	items, err := s.ListShoppingListItems(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	shared, err = s.ListSharedLists(ctx, "sarah_deals")
	require.NoError(t, err)
	assert.Empty(t, shared)

	deleted, err = s.DeleteShoppingList(ctx, list.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStore_IDsAreNeverReused(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	c1 := &models.Comment{DealID: 1, UserID: "user123", Content: "a"}
	require.NoError(t, s.CreateComment(ctx, c1))
	_, err := s.DeleteComment(ctx, c1.ID)
	require.NoError(t, err)

	c2 := &models.Comment{DealID: 1, UserID: "user123", Content: "b"}
	require.NoError(t, s.CreateComment(ctx, c2))
	assert.Equal(t, c1.ID+1, c2.ID)
}
