// Package bootstrap establishes runtime dependencies shared by the
// application entry points.
package bootstrap

import (
	"fmt"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	Migrate bool
}

// InitRuntime connects to the database and Redis and optionally runs schema
// migration. The Redis client may be nil when the server is unreachable;
// callers degrade accordingly, except sessions which require it at request
// time.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}
