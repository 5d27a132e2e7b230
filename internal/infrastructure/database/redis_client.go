package database

import (
	"context"
	"fmt"

	"payhook/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the client backing the creation lock and pings it once.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %v: %w", cfg.Addrs, err)
	}
	return client, nil
}
