package persistence

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the handful of commands the limiter issues.
type fakeRedis struct {
	redis.Cmdable

	mu      sync.Mutex
	values  map[string]int64
	expires map[string]time.Duration
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]int64{}, expires: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.FormatInt(v, 10), nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.values[key]++
	return redis.NewIntResult(f.values[key], nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		delete(f.expires, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisAttemptLimiter_LocksAfterThreshold(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	limiter, err := NewRedisAttemptLimiter(client, 3, 10*time.Minute)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, limiter.RecordFailure(ctx, "Alice"))
		blocked, err := limiter.Blocked(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, blocked)
	}

	require.NoError(t, limiter.RecordFailure(ctx, "alice"))
	blocked, err := limiter.Blocked(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, blocked)

	assert.Equal(t, 10*time.Minute, client.expires["login:failures:alice"])
}

func TestRedisAttemptLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	limiter, err := NewRedisAttemptLimiter(client, 1, time.Minute)
	require.NoError(t, err)

	require.NoError(t, limiter.RecordFailure(ctx, "bob"))
	blocked, _ := limiter.Blocked(ctx, "bob")
	require.True(t, blocked)

	require.NoError(t, limiter.Reset(ctx, "bob"))
	blocked, err = limiter.Blocked(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestRedisAttemptLimiter_Errors(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("connection refused")
	limiter, err := NewRedisAttemptLimiter(client, 3, time.Minute)
	require.NoError(t, err)

	_, err = limiter.Blocked(context.Background(), "alice")
	assert.Error(t, err)
	assert.Error(t, limiter.RecordFailure(context.Background(), "alice"))
}

func TestNewRedisAttemptLimiter_Validation(t *testing.T) {
	_, err := NewRedisAttemptLimiter(nil, 3, time.Minute)
	assert.Error(t, err)

	_, err = NewRedisAttemptLimiter(newFakeRedis(), 0, time.Minute)
	assert.Error(t, err)

	limiter, err := NewRedisAttemptLimiter(newFakeRedis(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, limiter.lockout)
}
