// Package models contains data structures for the application's domain models.
package models

import "time"

// Follower is a directed edge: FollowerID follows FollowingID. Both sides
// are usernames. A follows B does not imply B follows A. At most one edge
// exists per ordered pair; re-following overwrites the edge (last write
// wins) with a fresh id.
type Follower struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  string    `gorm:"not null;index" json:"followerId"`
	FollowingID string    `gorm:"not null;index" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Follower) TableName() string {
	return "followers"
}
