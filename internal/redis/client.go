// Package redis opens the Redis connection shared by the GitHub cache, the
// auth rate limiter and the account event stream.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"devconnector/internal/metrics"
)

const pingTimeout = 5 * time.Second

// Connect parses a redis:// URL, attaches the metrics hook and pings the
// server, so callers fail at startup rather than on the first request.
func Connect(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	client.AddHook(metrics.RedisHook{})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}
