package redisclient

import (
	"fmt"

	"opportunity-board/internal/config"

	"github.com/redis/go-redis/v9"
)

// New creates a Redis client from configuration. A non-empty URL wins over
// the discrete address fields.
func New(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}
