package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nontonanime/api/internal/config"
)

const (
	redisKeyPrefix   = "nontonanime:"
	redisOpTimeout   = 2 * time.Second
	redisScanCount   = 500
	redisPingTimeout = 5 * time.Second
)

// redisCache stores each page under its own key with a server side expiry.
// Size limits are left to the server's maxmemory policy.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRedisCache(opts Options) (*redisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddress,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &redisCache{client: client, ttl: opts.TTL}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger := config.GetLogger()
			logger.Warn().Err(err).Str("key", key).Msg("Redis cache read failed")
		}
		return nil, false
	}
	return value, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, redisKeyPrefix+key, value, r.ttl).Err(); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Msg("Redis cache write failed")
	}
}

// Len counts the prefixed keys with SCAN, so it is linear in the keyspace.
func (r *redisCache) Len(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	n := 0
	iter := r.client.Scan(ctx, 0, redisKeyPrefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Msg("Redis cache size scan failed")
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
