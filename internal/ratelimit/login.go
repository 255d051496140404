// Package ratelimit locks out repeated failed logins for an account.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var ErrTooManyAttempts = httperr.New(
	httperr.KindRateLimited,
	"TOO_MANY_ATTEMPTS",
	"Too many failed login attempts, try again later.",
)

// LoginThrottle counts failed logins per account.
type LoginThrottle interface {
	// Allow returns ErrTooManyAttempts while the account is locked out.
	Allow(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// NopThrottle never locks anyone out. Used when REDIS_URL is unset.
type NopThrottle struct{}

func (NopThrottle) Allow(context.Context, string) error { return nil }
func (NopThrottle) RecordFailure(context.Context, string) {}
func (NopThrottle) Reset(context.Context, string) {}

type RedisConfig struct {
	MaxFailures int
	Window      time.Duration
}

// RedisThrottle keeps a counter per account that expires Window after the
// first failure. Redis errors are logged and the login is allowed through.
type RedisThrottle struct {
	redis  *redis.Client
	log    zerolog.Logger
	config RedisConfig
}

func NewRedisThrottle(client *redis.Client, config RedisConfig, log zerolog.Logger) *RedisThrottle {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	return &RedisThrottle{redis: client, log: log, config: config}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func key(email string) string {
	return "login_fail:" + strings.ToLower(strings.TrimSpace(email))
}

func (t *RedisThrottle) Allow(ctx context.Context, email string) error {
	count, err := t.redis.Get(ctx, key(email)).Int()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		t.log.Warn().Err(err).Msg("login throttle unavailable")
		return nil
	}
	if count >= t.config.MaxFailures {
		return ErrTooManyAttempts
	}
	return nil
}

func (t *RedisThrottle) RecordFailure(ctx context.Context, email string) {
	k := key(email)
	count, err := t.redis.Incr(ctx, k).Result()
	if err != nil {
		t.log.Warn().Err(err).Msg("login throttle record failed")
		return
	}

	// window starts at the first failure
	if count == 1 {
		if err := t.redis.Expire(ctx, k, t.config.Window).Err(); err != nil {
			t.log.Warn().Err(err).Msg("login throttle expire failed")
		}
	}
}

func (t *RedisThrottle) Reset(ctx context.Context, email string) {
	if err := t.redis.Del(ctx, key(email)).Err(); err != nil {
		t.log.Warn().Err(err).Msg("login throttle reset failed")
	}
}
