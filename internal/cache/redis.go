package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/roamio/roamio-api/pkg/observability"
)

// Redis is the external cache backend.
type Redis struct {
	rdb    *redis.Client
	logger *slog.Logger
}

var _ Store = (*Redis)(nil)

// NewRedis connects and pings the Redis server.
func NewRedis(addr, password string, db int, logger *slog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Redis{rdb: rdb, logger: logger}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed", "key", key, "error", err)
		}
		observability.CacheMissesTotal.WithLabelValues(KeyPrefix(key)).Inc()
		return nil, false
	}
	observability.CacheHitsTotal.WithLabelValues(KeyPrefix(key)).Inc()
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", "key", key, "error", err)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("redis delete failed", "key", key, "error", err)
	}
}

func (r *Redis) Health(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
