package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"seotooler/internal/config"
	"seotooler/internal/logger"
)

// RedisOptions maps the redis config section onto client options.
func RedisOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// InitRedis connects and pings. The caller owns the returned client.
func InitRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(RedisOptions(cfg))

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	log.InfowCtx(ctx, "Redis connected successfully", "addr", rdb.Options().Addr, "db", cfg.DB)
	return rdb, nil
}
