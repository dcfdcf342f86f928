package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealfeed/internal/config"
	"dealfeed/internal/models"
	"dealfeed/internal/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	cfg := &config.Config{Port: "0", Env: "test", StoreDriver: "memory"}
	srv := NewServerWithDeps(cfg, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	srv.SetupRoutes(app)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func seedFeed(t *testing.T, store *storage.MemoryStore) *models.Deal {
	t.Helper()
	ctx := context.Background()

	st := &models.Store{Name: "Whole Foods Market", Location: "Downtown"}
	require.NoError(t, store.CreateStore(ctx, st))
	cat := &models.Category{Name: "Produce"}
	require.NoError(t, store.CreateCategory(ctx, cat))
	require.NoError(t, store.CreateUser(ctx, &models.User{Username: "sarah_deals", Password: "hashed"}))

	sale := "$2.49"
	deal := &models.Deal{
		UserID:     "sarah_deals",
		StoreID:    st.ID,
		CategoryID: cat.ID,
		Title:      "Fresh Organic Vegetables",
		SalePrice:  &sale,
	}
	require.NoError(t, store.CreateDeal(ctx, deal))
	return deal
}

func TestGetDeals(t *testing.T) {
	app, store := newTestApp(t)
	seedFeed(t, store)

	resp, body := doJSON(t, app, http.MethodGet, "/api/deals", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var deals []models.DealWithStore
	require.NoError(t, json.Unmarshal(body, &deals))
	require.Len(t, deals, 1)
	assert.Equal(t, "Fresh Organic Vegetables", deals[0].Title)
	assert.Equal(t, "Whole Foods Market", deals[0].Store.Name)
	assert.False(t, deals[0].IsLiked)
}

func TestGetDeal_NotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/deals/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	app, store := newTestApp(t)
	deal := seedFeed(t, store)
	path := fmt.Sprintf("/api/deals/%d/like?userId=user123", deal.ID)

	resp, body := doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Deal  models.Deal `json:"deal"`
		Liked bool        `json:"liked"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Liked)
	assert.Equal(t, 1, result.Deal.Likes)

	// Deals listed for the same user now report isLiked.
	resp, body = doJSON(t, app, http.MethodGet, "/api/deals?userId=user123", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var deals []models.DealWithStore
	require.NoError(t, json.Unmarshal(body, &deals))
	assert.True(t, deals[0].IsLiked)

	// Second toggle removes the like.
	resp, body = doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &result))
	assert.False(t, result.Liked)
	assert.Equal(t, 0, result.Deal.Likes)
}

func TestCreateDeal(t *testing.T) {
	app, store := newTestApp(t)
	seedFeed(t, store)

	resp, body := doJSON(t, app, http.MethodPost, "/api/deals?userId=sarah_deals", fiber.Map{
		"storeId":    1,
		"categoryId": 1,
		"title":      "Sourdough Special",
		"salePrice":  "$3.99",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var deal models.Deal
	require.NoError(t, json.Unmarshal(body, &deal))
	assert.Equal(t, "sarah_deals", deal.UserID)
	assert.Equal(t, 0, deal.Likes)

	// Validation failures are 400s.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/deals", fiber.Map{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestComments(t *testing.T) {
	app, store := newTestApp(t)
	deal := seedFeed(t, store)

	resp, body := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/deals/%d/comments?userId=sarah_deals", deal.ID),
		fiber.Map{"content": "got these yesterday"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var comment models.Comment
	require.NoError(t, json.Unmarshal(body, &comment))
	assert.NotZero(t, comment.ID)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/deals/%d/comments", deal.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []models.CommentWithUser
	require.NoError(t, json.Unmarshal(body, &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "sarah_deals", comments[0].User.Username)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/comments/%d", comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignupConflict(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/users", fiber.Map{
		"username": "lisa_shops",
		"password": "demo123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, json.Unmarshal(body, &user))
	assert.NotZero(t, user.ID)
	// The password hash must never serialize.
	assert.NotContains(t, string(body), "password")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/users", fiber.Map{
		"username": "lisa_shops",
		"password": "demo123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFollowEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &models.User{Username: "alice", Password: "hashed"}))
	require.NoError(t, store.CreateUser(ctx, &models.User{Username: "bob", Password: "hashed"}))

	resp, _ := doJSON(t, app, http.MethodPost, "/api/users/bob/follow?userId=alice", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/users/bob/follow-status?userId=alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		IsFollowing bool `json:"isFollowing"`
	}
	require.NoError(t, json.Unmarshal(body, &status))
	assert.True(t, status.IsFollowing)

	resp, body = doJSON(t, app, http.MethodGet, "/api/users/bob?userId=alice", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.UserProfile
	require.NoError(t, json.Unmarshal(body, &profile))
	assert.Equal(t, 1, profile.FollowersCount)
	assert.True(t, profile.IsFollowing)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/alice/follow?userId=alice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/users/bob/follow?userId=alice", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/users/bob/follow?userId=alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/chat/bob?userId=alice", fiber.Map{
		"content": "check out the steak deal",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, "alice", msg.FromUserID)
	assert.Nil(t, msg.ReadAt)

	// The other side sees the same conversation.
	resp, body = doJSON(t, app, http.MethodGet, "/api/chat/alice?userId=bob", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var conv []models.ChatMessage
	require.NoError(t, json.Unmarshal(body, &conv))
	require.Len(t, conv, 1)

	resp, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/chat/messages/%d/read", msg.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestShoppingListFlow(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/shopping-lists?userId=user123", fiber.Map{
		"name": "Weekly Groceries",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var list models.ShoppingList
	require.NoError(t, json.Unmarshal(body, &list))

	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shopping-lists/%d/items", list.ID),
		fiber.Map{"name": "Milk"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.ShoppingListItem
	require.NoError(t, json.Unmarshal(body, &item))
	assert.Equal(t, 1, item.Quantity)

	resp, body = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/shopping-list-items/%d", item.ID),
		fiber.Map{"isCompleted": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &item))
	assert.True(t, item.IsCompleted)

	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/shopping-lists/%d/share", list.ID),
		fiber.Map{"sharedWithUserId": "sarah_deals", "canEdit": true})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/shared-lists?userId=sarah_deals", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var shared []models.ShoppingListWithItems
	require.NoError(t, json.Unmarshal(body, &shared))
	require.Len(t, shared, 1)
	assert.Equal(t, 1, shared[0].ItemCount)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/shopping-lists/%d", list.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Cascade removed the share grant too.
	resp, body = doJSON(t, app, http.MethodGet, "/api/shared-lists?userId=sarah_deals", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &shared))
	assert.Empty(t, shared)
}

func TestScanBarcode(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/barcode/scan", fiber.Map{
		"barcode": "036000291452",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var first map[string]any
	require.NoError(t, json.Unmarshal(body, &first))
	assert.Equal(t, "036000291452", first["barcode"])
	assert.NotEmpty(t, first["name"])

	// The same barcode resolves to the same product.
	_, body = doJSON(t, app, http.MethodPost, "/api/barcode/scan", fiber.Map{
		"barcode": "036000291452",
	})
	var second map[string]any
	require.NoError(t, json.Unmarshal(body, &second))
	assert.Equal(t, first["name"], second["name"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/barcode/scan", fiber.Map{"barcode": "123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	app, store := newTestApp(t)
	seedFeed(t, store)

	resp, _ := doJSON(t, app, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health["status"])
}
