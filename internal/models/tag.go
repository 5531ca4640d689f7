package models

import "time"

// Tag is a shared label across posts. Tags are unowned; they are created on
// demand when a post first references the name and addressed by their own slug.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:110;not null" json:"slug"`
	Posts     []Post    `gorm:"many2many:post_tags" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
