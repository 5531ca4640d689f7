package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%s"

	// RecentPostsKey caches the homepage sidebar listing of newest published posts.
	RecentPostsKey = "posts:recent"
	// TagsKey caches the full tag listing.
	TagsKey = "tags:all"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	RecentPostsTTL = 2 * time.Minute
	TagsTTL        = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// PostKey addresses a post by slug, the public identifier.
func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the cached post plus the listings it may appear in.
func InvalidatePost(ctx context.Context, slug string) {
	Invalidate(ctx, PostKey(slug))
	Invalidate(ctx, RecentPostsKey)
}

// InvalidateTags drops the cached tag listing after tag creation.
func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagsKey)
}
