package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is the shared fixed-window backend. The window is anchored
// by the key's TTL: the first INCR in a window sets an expiry of one full
// window, so all replicas count against the same bucket.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Check(ctx context.Context, key string, cfg Config) (Result, error) {
	full := l.prefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, full)
	pipe.ExpireNX(ctx, full, cfg.Window)
	ttl := pipe.PTTL(ctx, full)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	remaining := cfg.MaxRequests - count
	resetIn := ttl.Val()
	if resetIn < 0 {
		resetIn = cfg.Window
	}
	resetAt := time.Now().Add(resetIn)

	if count > cfg.MaxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetIn,
		}, nil
	}
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining, ResetAt: resetAt}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
