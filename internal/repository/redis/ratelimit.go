package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginLimitPrefix = "login_attempts:"

// LoginLimiter throttles login attempts per client address using a fixed
// one-minute counter window in Redis.
type LoginLimiter struct {
	client    *Client
	perMinute int
	burst     int
}

// NewLoginLimiter creates a new login limiter
func NewLoginLimiter(client *Client, perMinute, burst int) *LoginLimiter {
	return &LoginLimiter{
		client:    client,
		perMinute: perMinute,
		burst:     burst,
	}
}

// Allow checks whether another login attempt is permitted.
// Returns (allowed, remaining, resetTime, error)
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	fullKey := loginLimitPrefix + key
	now := time.Now()
	windowEnd := now.Truncate(time.Minute).Add(time.Minute)

	pipe := l.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute login limit check: %w", err)
	}

	count := incrCmd.Val()
	limit := int64(l.perMinute + l.burst)
	remaining := int(limit - count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= limit, remaining, windowEnd, nil
}

// Reset clears the attempt counter for a key, used after a successful login
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.rdb.Del(ctx, loginLimitPrefix+key).Err()
}
