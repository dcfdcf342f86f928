// Package seed provides helpers to create demo data for the deal feed.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"dealfeed/internal/models"
	"dealfeed/internal/storage"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// Run populates the store with the demo dataset: a handful of grocery
// stores and categories, a small cast of users, deals authored by them,
// a follow mesh, and starter comments. Safe to call once on an empty
// store at startup.
func Run(ctx context.Context, store storage.Storage) error {
	gofakeit.Seed(time.Now().UnixNano())

	if _, err := seedUsers(ctx, store); err != nil {
		return err
	}
	stores, err := seedStores(ctx, store)
	if err != nil {
		return err
	}
	categories, err := seedCategories(ctx, store)
	if err != nil {
		return err
	}
	deals, err := seedDeals(ctx, store, stores, categories)
	if err != nil {
		return err
	}
	if err := seedFollows(ctx, store); err != nil {
		return err
	}
	if err := seedComments(ctx, store, deals); err != nil {
		return err
	}
	return seedShoppingList(ctx, store)
}

func seedUsers(ctx context.Context, store storage.Storage) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := []*models.User{
		{Username: "user123", DisplayName: strPtr("John Doe"), Bio: strPtr("Love finding great deals!")},
		{Username: "sarah_deals", DisplayName: strPtr("Sarah Johnson"), Bio: strPtr("Grocery shopping expert")},
		{Username: "mike_saves", DisplayName: strPtr("Mike Wilson"), Bio: strPtr("Deals hunter")},
		{Username: "lisa_shops", DisplayName: strPtr("Lisa Chen"), Bio: strPtr("Smart shopper mom")},
	}
	for _, u := range users {
		u.Password = string(hashed)
		u.Avatar = strPtr(fmt.Sprintf("https://i.pravatar.cc/100?u=%s", u.Username))
		if err := store.CreateUser(ctx, u); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func seedStores(ctx context.Context, store storage.Storage) ([]*models.Store, error) {
	stores := []*models.Store{
		{Name: "Whole Foods Market", Location: "Downtown", Address: strPtr("123 Main St, Downtown"), Latitude: strPtr("40.7128"), Longitude: strPtr("-74.0060")},
		{Name: "Target", Location: "Midtown", Address: strPtr("456 Commerce Ave, Midtown"), Latitude: strPtr("40.7589"), Longitude: strPtr("-73.9851")},
		{Name: "Kroger", Location: "Westside", Address: strPtr("789 West Blvd, Westside"), Latitude: strPtr("40.7505"), Longitude: strPtr("-74.0087")},
		{Name: "Costco Wholesale", Location: "Northside", Address: strPtr("321 Industrial Dr, Northside"), Latitude: strPtr("40.7831"), Longitude: strPtr("-73.9712")},
		{Name: "Safeway", Location: "Downtown", Address: strPtr("654 Center St, Downtown"), Latitude: strPtr("40.7174"), Longitude: strPtr("-74.0113")},
		{Name: "Trader Joe's", Location: "Eastside", Address: strPtr("987 Park Ave, Eastside"), Latitude: strPtr("40.7614"), Longitude: strPtr("-73.9776")},
	}
	for _, st := range stores {
		st.LogoURL = strPtr(fmt.Sprintf("https://picsum.photos/seed/%s/40/40", gofakeit.UUID()))
		if err := store.CreateStore(ctx, st); err != nil {
			return nil, err
		}
	}
	return stores, nil
}

func seedCategories(ctx context.Context, store storage.Storage) ([]*models.Category, error) {
	categories := []*models.Category{
		{Name: "Produce", Color: strPtr("from-green-400 to-emerald-500")},
		{Name: "Dairy", Color: strPtr("from-blue-400 to-blue-600")},
		{Name: "Meat", Color: strPtr("from-red-400 to-red-600")},
		{Name: "Bakery", Color: strPtr("from-yellow-400 to-orange-500")},
		{Name: "Frozen", Color: strPtr("from-cyan-400 to-blue-500")},
	}
	for _, cat := range categories {
		cat.ImageURL = strPtr(fmt.Sprintf("https://picsum.photos/seed/%s/64/64", gofakeit.UUID()))
		if err := store.CreateCategory(ctx, cat); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func seedDeals(ctx context.Context, store storage.Storage, stores []*models.Store, categories []*models.Category) ([]*models.Deal, error) {
	in24h := time.Now().Add(24 * time.Hour)
	in48h := time.Now().Add(48 * time.Hour)
	in3d := time.Now().Add(3 * 24 * time.Hour)

	deals := []*models.Deal{
		{
			UserID:          "user123",
			StoreID:         stores[0].ID,
			CategoryID:      categories[0].ID,
			Title:           "Fresh Organic Vegetables",
			Description:     "Fresh organic vegetables 50% off! Perfect for your healthy meal prep. Grab them before they're gone!",
			OriginalPrice:   strPtr("$4.99"),
			SalePrice:       strPtr("$2.49"),
			DiscountPercent: intPtr(50),
			ExpiresAt:       &in24h,
		},
		{
			UserID:          "sarah_deals",
			StoreID:         stores[1].ID,
			CategoryID:      categories[1].ID,
			Title:           "Dairy Products Special",
			Description:     "Dairy deals! Buy 2 get 1 FREE on all milk, cheese, and yogurt. Stock up for the week!",
			OriginalPrice:   strPtr("$12.97"),
			SalePrice:       strPtr("$8.98"),
			DiscountPercent: intPtr(33),
			ExpiresAt:       &in48h,
		},
		{
			UserID:          "mike_saves",
			StoreID:         stores[2].ID,
			CategoryID:      categories[2].ID,
			Title:           "Premium Steaks Weekend Sale",
			Description:     "Premium steaks 30% off this weekend! Perfect for your BBQ plans. Quality cuts at unbeatable prices!",
			OriginalPrice:   strPtr("$24.99"),
			SalePrice:       strPtr("$17.49"),
			DiscountPercent: intPtr(30),
			ExpiresAt:       &in3d,
		},
	}
	for _, d := range deals {
		d.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
		if err := store.CreateDeal(ctx, d); err != nil {
			return nil, err
		}
	}
	return deals, nil
}

func seedFollows(ctx context.Context, store storage.Storage) error {
	pairs := [][2]string{
		{"user123", "sarah_deals"},
		{"user123", "mike_saves"},
		{"sarah_deals", "user123"},
		{"lisa_shops", "user123"},
	}
	for _, p := range pairs {
		if _, err := store.Follow(ctx, p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

func seedComments(ctx context.Context, store storage.Storage, deals []*models.Deal) error {
	comments := []*models.Comment{
		{DealID: deals[0].ID, UserID: "sarah_deals", Content: "Great deal! I got these yesterday"},
		{DealID: deals[0].ID, UserID: "mike_saves", Content: "Thanks for sharing! Heading there now"},
		{DealID: deals[1].ID, UserID: "lisa_shops", Content: "Perfect timing, we're out of milk!"},
	}
	for _, c := range comments {
		if err := store.CreateComment(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func seedShoppingList(ctx context.Context, store storage.Storage) error {
	list := &models.ShoppingList{Name: "Weekly Groceries", UserID: "user123"}
	if err := store.CreateShoppingList(ctx, list); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		item := &models.ShoppingListItem{
			ListID:   list.ID,
			Name:     gofakeit.ProductName(),
			Quantity: gofakeit.Number(1, 4),
			Price:    strPtr(fmt.Sprintf("$%.2f", gofakeit.Price(1, 15))),
			Category: strPtr(gofakeit.ProductCategory()),
		}
		if err := store.CreateShoppingListItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
