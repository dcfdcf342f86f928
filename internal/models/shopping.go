// Package models contains data structures for the application's domain models.
package models

import "time"

// ShoppingList is a named, user-owned collection of purchasable items,
// optionally shared with other users via grants. Deleting a list cascades
// to its items and grants.
type ShoppingList struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	UserID    string    `gorm:"not null;index" json:"userId"`
	IsShared  bool      `gorm:"not null;default:false" json:"isShared"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (ShoppingList) TableName() string {
	return "shopping_lists"
}

// ShoppingListItem is a single line on a shopping list. Its lifecycle is
// bound to the parent list.
type ShoppingListItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ListID      uint      `gorm:"not null;index" json:"listId"`
	Name        string    `gorm:"not null" json:"name"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	Price       *string   `json:"price"`
	Category    *string   `json:"category"`
	IsCompleted bool      `gorm:"not null;default:false" json:"isCompleted"`
	Barcode     *string   `json:"barcode"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (ShoppingListItem) TableName() string {
	return "shopping_list_items"
}

// SharedList grants another user visibility (and optionally edit rights)
// into a shopping list. A list may carry multiple grants.
type SharedList struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ListID           uint      `gorm:"not null;index" json:"listId"`
	SharedWithUserID string    `gorm:"not null;index" json:"sharedWithUserId"`
	CanEdit          bool      `gorm:"not null;default:false" json:"canEdit"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (SharedList) TableName() string {
	return "shared_lists"
}

// ShoppingListWithItems is the composed view of a list decorated with its
// items and item count. Assembled fresh on every read, never persisted.
type ShoppingListWithItems struct {
	ShoppingList
	Items     []ShoppingListItem `json:"items"`
	ItemCount int                `json:"itemCount"`
}

// ShoppingListUpdate carries a partial field set for updating a list.
// Nil fields are left untouched.
type ShoppingListUpdate struct {
	Name     *string `json:"name"`
	IsShared *bool   `json:"isShared"`
}

// ShoppingListItemUpdate carries a partial field set for updating an item.
// Nil fields are left untouched.
type ShoppingListItemUpdate struct {
	Name        *string `json:"name"`
	Quantity    *int    `json:"quantity" validate:"omitempty,min=1"`
	Price       *string `json:"price"`
	Category    *string `json:"category"`
	IsCompleted *bool   `json:"isCompleted"`
	Barcode     *string `json:"barcode"`
}
