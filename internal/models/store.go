// Package models contains data structures for the application's domain models.
package models

// Store represents a retail location that deals are posted against.
// Stores are immutable after creation.
type Store struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"not null" json:"name"`
	Location  string  `gorm:"not null" json:"location"`
	Address   *string `json:"address"`
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
	LogoURL   *string `json:"logoUrl"`
}

// TableName specifies the table name for GORM.
func (Store) TableName() string {
	return "stores"
}

// Category groups deals by product type (Produce, Dairy, ...).
// Categories are immutable after creation.
type Category struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	ImageURL *string `json:"imageUrl"`
	Color    *string `json:"color"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
