package seed

import (
	"fmt"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSeed(t *testing.T) {
	db := openTestDB(t)

	if err := Seed(db, Options{NumUsers: 4, NumPosts: 10, ShouldClean: true}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var userCount, postCount, tagCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Tag{}).Count(&tagCount)

	if userCount != 4 {
		t.Fatalf("expected 4 users, got %d", userCount)
	}
	if postCount != 10 {
		t.Fatalf("expected 10 posts, got %d", postCount)
	}
	if tagCount == 0 {
		t.Fatal("expected tags to be seeded")
	}

	// Every post slug must be unique and non-empty.
	var slugs []string
	db.Model(&models.Post{}).Pluck("slug", &slugs)
	seen := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		if s == "" {
			t.Fatal("seeded post with empty slug")
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate slug: %s", s)
		}
		seen[s] = struct{}{}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := Seed(db, Options{NumUsers: 2, NumPosts: 4}); err != nil {
		t.Fatalf("first seed failed: %v", err)
	}
	// Re-running with ShouldClean replaces the data instead of conflicting.
	if err := Seed(db, Options{NumUsers: 2, NumPosts: 4, ShouldClean: true}); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	if userCount != 2 {
		t.Fatalf("expected 2 users after reseed, got %d", userCount)
	}
}

func TestBuildPost(t *testing.T) {
	f := NewFactory(nil)
	author := &models.User{ID: 1}

	p := f.BuildPost(author)
	if p.Slug == "" {
		t.Fatal("expected non-empty slug")
	}
	if p.Status != models.StatusPublished && p.Status != models.StatusDraft {
		t.Fatalf("unexpected status: %s", p.Status)
	}
	if p.UserID != 1 {
		t.Fatalf("expected author ID 1, got %d", p.UserID)
	}
}
