// Package models contains data structures for the application's domain models.
package models

import "time"

// Deal represents a user-submitted post describing a discounted product at
// a specific store. UserID is the poster's username; it is an opaque
// identifier and is not validated against the users table on write.
type Deal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          string     `gorm:"not null;index" json:"userId"`
	StoreID         uint       `gorm:"not null;index" json:"storeId"`
	CategoryID      uint       `gorm:"not null;index" json:"categoryId"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `gorm:"type:text;not null" json:"description"`
	OriginalPrice   *string    `json:"originalPrice"`
	SalePrice       *string    `json:"salePrice"`
	DiscountPercent *int       `json:"discountPercent"`
	ImageURL        string     `gorm:"not null" json:"imageUrl"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	// Likes is a denormalized counter over the likes table. The store never
	// syncs it on its own; callers recount and write it back after every
	// like mutation (see service.DealService.ToggleLike).
	Likes int `gorm:"not null;default:0" json:"likes"`
}

// TableName specifies the table name for GORM.
func (Deal) TableName() string {
	return "deals"
}

// Like is a per-user endorsement of a deal. The store does not reject a
// duplicate (dealId, userId) insert; the uniqueness invariant is enforced
// by the caller's check-then-act protocol.
type Like struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	DealID uint   `gorm:"not null;index" json:"dealId"`
	UserID string `gorm:"not null;index" json:"userId"`
}

// TableName specifies the table name for GORM.
func (Like) TableName() string {
	return "likes"
}

// DealWithStore is the composed feed view: a deal joined with its store,
// category, and posting user. It is assembled fresh on every read and is
// never persisted or cached.
type DealWithStore struct {
	Deal
	Store    Store    `json:"store"`
	Category Category `json:"category"`
	User     User     `json:"user"`
	IsLiked  bool     `json:"isLiked"`
}
