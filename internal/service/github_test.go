package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/cache"
	"devconnector/internal/model"
)

func TestGithubService_Repos(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "created:asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "token gh-secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"hello","html_url":"https://github.com/octocat/hello","stargazers_count":3}]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	svc := NewGithubService(srv.URL+"/", "gh-secret", cache.NewGithubCache(rdb), time.Minute)
	ctx := context.Background()

	repos, err := svc.Repos(ctx, "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "hello", repos[0].Name)
	assert.Equal(t, 3, repos[0].StargazersCount)

	// Second call is served from the cache.
	repos, err = svc.Repos(ctx, "OctoCat")
	require.NoError(t, err)
	assert.Len(t, repos, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestGithubService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unknown user", http.StatusNotFound, model.ErrGithubNotFound},
		{"rate limited", http.StatusForbidden, model.ErrGithubUnavailable},
		{"server error", http.StatusBadGateway, model.ErrGithubUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Empty(t, r.Header.Get("Authorization"), "no token configured")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			svc := NewGithubService(srv.URL, "", nil, time.Minute)
			_, err := svc.Repos(context.Background(), "ghost")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGithubService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := NewGithubService(url, "", nil, time.Minute)
	_, err := svc.Repos(context.Background(), "octocat")
	assert.ErrorIs(t, err, model.ErrGithubUnavailable)
}
