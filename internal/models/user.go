// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account. Users are addressable both by numeric id and
// by username; the store keeps both indexes in sync.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"not null;index" json:"username"`
	Password    string    `gorm:"not null" json:"-"`
	DisplayName *string   `json:"displayName"`
	Avatar      *string   `json:"avatar"`
	Bio         *string   `json:"bio"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// UserProfile is a composed view of a user decorated with live follower
// and following counts. The counts are computed over the follower edge set
// at read time and are never stored.
type UserProfile struct {
	User
	FollowersCount int  `json:"followersCount"`
	FollowingCount int  `json:"followingCount"`
	IsFollowing    bool `json:"isFollowing,omitempty"`
}
