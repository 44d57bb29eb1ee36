package cache

import (
	"context"
	"time"

	"github.com/johnquangdev/meeting-recapper/pkg/config"
)

// Store is a string key-value store with per-key expiration, used as a
// read-side cache for assembled meeting records.
type Store interface {
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	// Get returns the value and whether the key was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// New creates the cache backend selected by config: Redis when enabled,
// otherwise the in-process memory store.
func New(cfg *config.Config) (Store, error) {
	if cfg.Redis.Enabled {
		return NewRedisClient(cfg)
	}
	return NewMemoryStore(), nil
}
