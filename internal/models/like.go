package models

import "time"

// Like represents a user's like on a post. The combination of UserID and
// PostID is unique: the storage constraint is the point of truth for the
// at-most-one-like-per-pair invariant. Likes are hard-deleted on unlike so
// the unique index never collides with a tombstone.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
