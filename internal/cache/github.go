package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"devconnector/internal/model"
)

const (
	// GithubReposPrefix is the key prefix for cached repository lists
	GithubReposPrefix = "github:repos:"
)

// GithubCache stores the latest repositories of a GitHub user.
type GithubCache interface {
	// Get returns found=false on a miss.
	Get(ctx context.Context, username string) (repos []model.GithubRepo, found bool, err error)
	Set(ctx context.Context, username string, repos []model.GithubRepo, ttl time.Duration) error
}

// RedisGithubCache implements GithubCache with one JSON string per user.
type RedisGithubCache struct {
	client redis.UniversalClient
}

// NewGithubCache creates a new GithubCache backed by Redis.
func NewGithubCache(client redis.UniversalClient) GithubCache {
	return &RedisGithubCache{client: client}
}

// githubKey lower-cases the username; GitHub logins are case-insensitive.
func githubKey(username string) string {
	return GithubReposPrefix + strings.ToLower(username)
}

func (c *RedisGithubCache) Get(ctx context.Context, username string) ([]model.GithubRepo, bool, error) {
	data, err := c.client.Get(ctx, githubKey(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get github cache: %w", err)
	}

	var repos []model.GithubRepo
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, false, fmt.Errorf("decode github cache: %w", err)
	}
	return repos, true, nil
}

func (c *RedisGithubCache) Set(ctx context.Context, username string, repos []model.GithubRepo, ttl time.Duration) error {
	data, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("encode github cache: %w", err)
	}
	if err := c.client.Set(ctx, githubKey(username), data, ttl).Err(); err != nil {
		return fmt.Errorf("set github cache: %w", err)
	}
	return nil
}
