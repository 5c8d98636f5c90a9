package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
)

var ErrTooManyLoginAttempts = apierrors.NewKind(apierrors.ErrRateLimited, "too many failed login attempts, try again later")

// LoginThrottle limits failed password attempts per username.
type LoginThrottle interface {
	Allow(ctx context.Context, username string) error
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// NoopLoginThrottle never blocks. It is used when Redis is not configured.
type NoopLoginThrottle struct{}

func (NoopLoginThrottle) Allow(context.Context, string) error         { return nil }
func (NoopLoginThrottle) RecordFailure(context.Context, string) error { return nil }
func (NoopLoginThrottle) Reset(context.Context, string) error         { return nil }

// RedisLoginThrottle counts failures in Redis. The counter expires lockout
// after the first failure of a window.
type RedisLoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int64
	lockout     time.Duration
}

// NewRedisLoginThrottle creates a RedisLoginThrottle.
func NewRedisLoginThrottle(client redis.Cmdable, maxAttempts int, lockout time.Duration) *RedisLoginThrottle {
	return &RedisLoginThrottle{
		client:      client,
		maxAttempts: int64(maxAttempts),
		lockout:     lockout,
	}
}

func loginAttemptsKey(username string) string {
	return "login_attempts:" + strings.ToLower(username)
}

func (t *RedisLoginThrottle) Allow(ctx context.Context, username string) error {
	count, err := t.client.Get(ctx, loginAttemptsKey(username)).Int64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count >= t.maxAttempts {
		return ErrTooManyLoginAttempts
	}
	return nil
}

func (t *RedisLoginThrottle) RecordFailure(ctx context.Context, username string) error {
	key := loginAttemptsKey(username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.lockout).Err(); err != nil {
			return fmt.Errorf("failed to set login attempt expiry: %w", err)
		}
	}
	return nil
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, username string) error {
	if err := t.client.Del(ctx, loginAttemptsKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
