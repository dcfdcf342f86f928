// Package models contains data structures for the application's domain models.
package models

import "time"

// Comment is a user comment on a deal.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DealID    uint      `gorm:"not null;index" json:"dealId"`
	UserID    string    `gorm:"not null;index" json:"userId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Comment) TableName() string {
	return "comments"
}

// CommentWithUser is the composed view of a comment joined with its author.
// Assembled fresh on every read, never persisted.
type CommentWithUser struct {
	Comment
	User User `json:"user"`
}
