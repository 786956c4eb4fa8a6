package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/notification-service/internal/config"
)

var errRedisNotConfigured = errors.New("redis client not configured")

// Redis owns the go-redis client backing login throttling.
type Redis struct {
	client *redis.Client
}

// NewRedis opens a client for cfg. An unreachable server is logged, not fatal:
// the attempt limiter fails open while Redis is down.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable; login throttling degraded", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}
	return &Redis{client: client}
}

// Cmdable exposes the command set consumed by RedisAttemptLimiter.
func (r *Redis) Cmdable() redis.Cmdable {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client
}

// Ping backs the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.client == nil {
		return errRedisNotConfigured
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() {
	if r == nil || r.client == nil {
		return
	}
	_ = r.client.Close()
}
