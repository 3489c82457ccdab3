package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCounter is the part of redis.Cmdable the fixed window uses.
type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter counts requests per key in a fixed window shared by every
// replica. Redis failures fail open.
type RedisLimiter struct {
	rdb    redisCounter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	return newRedisLimiter(rdb, prefix, limit, window)
}

func newRedisLimiter(rdb redisCounter, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - 1}, fmt.Errorf("redis expire: %w", err)
		}
	}

	d := Decision{Limit: l.limit}
	if count > int64(l.limit) {
		ttl, err := l.rdb.TTL(ctx, k).Result()
		if err != nil || ttl <= 0 {
			ttl = l.window
		}
		d.RetryAfter = ttl
		return d, nil
	}

	d.Allowed = true
	d.Remaining = l.limit - int(count)
	return d, nil
}
