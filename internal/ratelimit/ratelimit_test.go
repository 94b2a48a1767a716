package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "auth", "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.Allow(ctx, "auth", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "third request in the window is rejected")

	ok, err = l.Allow(ctx, "auth", "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "other clients have their own window")

	mr.FastForward(time.Minute + time.Second)

	ok, err = l.Allow(ctx, "auth", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "window resets after expiry")
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	_, err := l.Allow(context.Background(), "auth", "1.2.3.4")
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter(3, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow(ctx, "auth", "ip")
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "auth", "ip")
	assert.False(t, ok)

	// One token refills every window/limit.
	now = now.Add(20 * time.Second)
	ok, _ = l.Allow(ctx, "auth", "ip")
	assert.True(t, ok)
}

func TestLocalLimiter_SweepsIdleBuckets(t *testing.T) {
	l := NewLocalLimiter(3, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "auth", "a")
	now = now.Add(maxIdle + time.Minute)
	_, _ = l.Allow(ctx, "auth", "b")

	assert.Len(t, l.buckets, 1)
}
