package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginFailurePrefix = "login:failures:"

// RedisAttemptLimiter counts failed logins per username in Redis. The counter
// expires one lockout window after the first failure.
type RedisAttemptLimiter struct {
	client      redis.Cmdable
	maxAttempts int64
	lockout     time.Duration
}

// NewRedisAttemptLimiter builds a limiter; maxAttempts must be positive.
func NewRedisAttemptLimiter(client redis.Cmdable, maxAttempts int, lockout time.Duration) (*RedisAttemptLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client not configured")
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}
	if lockout <= 0 {
		lockout = 15 * time.Minute
	}
	return &RedisAttemptLimiter{client: client, maxAttempts: int64(maxAttempts), lockout: lockout}, nil
}

func (l *RedisAttemptLimiter) key(username string) string {
	return loginFailurePrefix + strings.ToLower(username)
}

// Blocked reports whether username reached the failure threshold.
func (l *RedisAttemptLimiter) Blocked(ctx context.Context, username string) (bool, error) {
	count, err := l.client.Get(ctx, l.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= l.maxAttempts, nil
}

// RecordFailure increments the counter, starting the window on the first failure.
func (l *RedisAttemptLimiter) RecordFailure(ctx context.Context, username string) error {
	key := l.key(username)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, key, l.lockout).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *RedisAttemptLimiter) Reset(ctx context.Context, username string) error {
	return l.client.Del(ctx, l.key(username)).Err()
}
