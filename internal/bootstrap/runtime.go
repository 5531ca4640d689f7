// Package bootstrap establishes runtime dependencies shared by the server
// and the CLI tools.
package bootstrap

import (
	"fmt"
	"log"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates an empty development database with demo content.
	SeedDemo bool
}

// demo dataset size for first-boot development databases
const (
	demoUsers = 5
	demoPosts = 20
)

// InitRuntime connects to DB and Redis and optionally runs demo seeding.
// The Redis client may be nil if the server is unreachable; callers degrade
// to cache-less operation.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := ensureDemoData(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// ensureDemoData seeds demo content exactly once: only when the users table
// is empty.
func ensureDemoData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	log.Println("empty development database, seeding demo content")
	return seed.Seed(db, seed.Options{NumUsers: demoUsers, NumPosts: demoPosts})
}
