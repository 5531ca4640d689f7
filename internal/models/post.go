package models

import (
	"time"

	"gorm.io/gorm"
)

// Post publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post represents a blog post. The slug is assigned once at creation and is
// never recomputed, even when the title changes later.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Slug     string `gorm:"uniqueIndex;size:220;not null" json:"slug"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `json:"image_url,omitempty"`
	Status   string `gorm:"size:10;not null;default:draft;index" json:"status"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Tags     []Tag  `gorm:"many2many:post_tags" json:"tags"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// VisibleTo reports whether viewerID may see this post. Published posts are
// visible to everyone, including anonymous viewers (viewerID == 0); drafts
// only to their author.
func (p *Post) VisibleTo(viewerID uint) bool {
	if p.Status == StatusPublished {
		return true
	}
	return viewerID != 0 && viewerID == p.UserID
}

// ValidStatus reports whether s is a recognized publication state.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}
