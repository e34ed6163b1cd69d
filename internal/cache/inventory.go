package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%d"
)

const (
	// UserTTL bounds staleness of cached user rows. Post rows are never
	// cached: their views counter changes on every detail read.
	UserTTL = 5 * time.Minute
)

// UserKey returns the cache key for a user row.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// Invalidate drops a single key. Safe to call when Redis is unavailable.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached row for a user.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
