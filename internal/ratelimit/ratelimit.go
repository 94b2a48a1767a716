// Package ratelimit counts requests per client key. The Redis limiter is a
// fixed window shared by every server instance; the local limiter is a
// per-process token bucket used when Redis is not configured.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key on resource is allowed.
type Limiter interface {
	Allow(ctx context.Context, resource, key string) (bool, error)
}

// RedisLimiter allows limit requests per window with INCR + EXPIRE.
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, resource, key string) (bool, error) {
	k := fmt.Sprintf("rl:%s:%s", resource, key)

	cnt, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("incr rate limit: %w", err)
	}
	if cnt == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire rate limit: %w", err)
		}
	}
	return cnt <= int64(l.limit), nil
}

// maxIdle is how long an unused bucket is kept.
const maxIdle = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per resource and key, refilled at
// limit/window with a burst of limit.
type LocalLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	every     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, resource, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	k := resource + ":" + key
	b, ok := l.buckets[k]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.burst)}
		l.buckets[k] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// sweep drops idle buckets at most once per maxIdle.
func (l *LocalLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < maxIdle {
		return
	}
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(l.buckets, k)
		}
	}
	l.lastSweep = now
}
