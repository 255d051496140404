package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisThrottleLocksAfterMaxFailures(t *testing.T) {
	_, client := setupTestRedis(t)
	throttle := NewRedisThrottle(client, RedisConfig{MaxFailures: 3, Window: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
		throttle.RecordFailure(ctx, "a@clinic.test")
	}
	require.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
	throttle.RecordFailure(ctx, "A@Clinic.test ")

	err := throttle.Allow(ctx, "a@clinic.test")
	assert.True(t, errors.Is(err, ErrTooManyAttempts))

	assert.NoError(t, throttle.Allow(ctx, "b@clinic.test"), "other accounts are unaffected")
}

func TestRedisThrottleWindowExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	throttle := NewRedisThrottle(client, RedisConfig{MaxFailures: 1, Window: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	throttle.RecordFailure(ctx, "a@clinic.test")
	require.Error(t, throttle.Allow(ctx, "a@clinic.test"))

	mr.FastForward(61 * time.Second)
	assert.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
}

func TestRedisThrottleReset(t *testing.T) {
	_, client := setupTestRedis(t)
	throttle := NewRedisThrottle(client, RedisConfig{MaxFailures: 1, Window: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	throttle.RecordFailure(ctx, "a@clinic.test")
	throttle.Reset(ctx, "a@clinic.test")
	assert.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
}

func TestRedisThrottleFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()

	throttle := NewRedisThrottle(client, RedisConfig{MaxFailures: 1, Window: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	throttle.RecordFailure(ctx, "a@clinic.test")
	mr.Close()

	assert.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
	assert.NotPanics(t, func() { throttle.RecordFailure(ctx, "a@clinic.test") })
}

func TestNopThrottle(t *testing.T) {
	var throttle LoginThrottle = NopThrottle{}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		throttle.RecordFailure(ctx, "a@clinic.test")
	}
	assert.NoError(t, throttle.Allow(ctx, "a@clinic.test"))
}
