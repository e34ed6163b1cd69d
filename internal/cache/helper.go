package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: on a hit, dest is filled from
// Redis; on a miss, load is called and its result cached with the given TTL.
// When Redis is unavailable it degrades to calling load directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt entry: fall through to reload and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		// Redis error other than a miss: serve from the source of truth.
		return load()
	}

	if err := load(); err != nil {
		return err
	}

	if payload, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, payload, ttl)
	}
	return nil
}
