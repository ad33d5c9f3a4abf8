package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "ratelimit:%s"

// RedisStore backs the counters with Redis so limits hold across replicas.
// INCR plus a window-scoped expiry gives the same fixed-window semantics as
// the in-memory store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	redisKey := fmt.Sprintf(redisKeyPrefix, key)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to increment rate limit key: %w", err)
	}

	count := incr.Val()
	remaining, err := ttl.Result()
	if err != nil || remaining < 0 {
		// First hit in the window, or a key left without expiry: pin the
		// window boundary now.
		if err := s.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("failed to set rate limit window: %w", err)
		}
		remaining = window
	}
	return count, time.Now().Add(remaining), nil
}
