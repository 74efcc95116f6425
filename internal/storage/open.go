package storage

import (
	"context"
	"fmt"

	"opportunity-board/internal/config"

	"github.com/redis/go-redis/v9"
)

// Open returns the Store selected by cfg.Driver. rdb is only used by the
// redis driver and may be nil otherwise.
func Open(ctx context.Context, cfg config.StoreConfig, rdb *redis.Client) (Store, error) {
	switch cfg.Driver {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("store: redis driver needs a redis client")
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisStore(rdb, cfg.CollectionPrefix), nil
	case "postgres":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("store: postgres_url is required for the postgres driver")
		}
		return NewPostgresStore(ctx, cfg.PostgresURL, cfg.CollectionPrefix)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, cfg.CollectionPrefix)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
