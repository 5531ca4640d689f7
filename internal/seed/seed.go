// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"inkwell/internal/slug"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagNames = []string{
	"Go", "Web Development", "Databases", "Testing", "DevOps",
	"Writing", "Productivity", "Career", "Open Source", "Tutorials",
	"Performance", "Security", "Design", "Tooling", "Reviews",
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	// Clear existing data to avoid conflicts if requested
	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	f := NewFactory(db)

	users, err := f.CreateUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	tags, err := f.CreateTags(tagNames)
	if err != nil {
		return fmt.Errorf("failed to create tags: %w", err)
	}
	log.Printf("✓ %d tags available", len(tags))

	posts, err := f.CreatePosts(users, tags, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, err := f.CreateComments(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	likes, err := f.CreateLikes(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likes)

	log.Println("🌱 Seeding complete")
	return nil
}

// uniqueSlug derives a slug from the title and suffixes it until it is free
// within this seeding run.
func uniqueSlug(title string, taken map[string]struct{}) string {
	base := slug.Make(title)
	if base == "" {
		base = fmt.Sprintf("post-%d", rand.Intn(1_000_000))
	}
	candidate := base
	for n := 2; ; n++ {
		if _, exists := taken[candidate]; !exists {
			taken[candidate] = struct{}{}
			return candidate
		}
		candidate = slug.WithSuffix(base, n)
	}
}

func clearData(db *gorm.DB) error {
	// Delete in dependency order so foreign keys never dangle.
	tables := []string{"post_tags", "likes", "comments", "posts", "tags", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
