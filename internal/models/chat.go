// Package models contains data structures for the application's domain models.
package models

import "time"

// ChatMessage is a direct message between two users. A message belongs to
// exactly one ordered (from, to) direction, but a conversation is the
// unordered user pair: queries on either ordering return the same set.
type ChatMessage struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FromUserID string     `gorm:"not null;index" json:"fromUserId"`
	ToUserID   string     `gorm:"not null;index" json:"toUserId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	DealID     *uint      `gorm:"index" json:"dealId"`
	CreatedAt  time.Time  `json:"createdAt"`
	ReadAt     *time.Time `json:"readAt"`
}

// TableName specifies the table name for GORM.
func (ChatMessage) TableName() string {
	return "chat_messages"
}
