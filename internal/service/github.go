package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"devconnector/internal/cache"
	"devconnector/internal/logging"
	"devconnector/internal/model"
)

// GithubService proxies the latest repositories of a GitHub user.
type GithubService struct {
	client   *http.Client
	baseURL  string
	token    string
	cache    cache.GithubCache // nil disables caching
	cacheTTL time.Duration
	log      zerolog.Logger
}

func NewGithubService(baseURL, token string, c cache.GithubCache, cacheTTL time.Duration) *GithubService {
	return &GithubService{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		token:    token,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      logging.For("github_service"),
	}
}

// Repos returns up to five repositories. A GitHub 404 maps to
// ErrGithubNotFound, every other failure to ErrGithubUnavailable.
func (s *GithubService) Repos(ctx context.Context, username string) ([]model.GithubRepo, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, model.ErrGithubNotFound
	}

	if s.cache != nil {
		repos, found, err := s.cache.Get(ctx, username)
		if err != nil {
			s.log.Warn().Err(err).Msg("github cache read failed")
		} else if found {
			return repos, nil
		}
	}

	repos, err := s.fetch(ctx, username)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, username, repos, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("github cache write failed")
		}
	}
	return repos, nil
}

func (s *GithubService) fetch(ctx context.Context, username string) ([]model.GithubRepo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc", s.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGithubUnavailable, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "devconnector")
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("github request failed")
		return nil, fmt.Errorf("%w: %v", model.ErrGithubUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, model.ErrGithubNotFound
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, resp.Body)
		s.log.Error().Int("status", resp.StatusCode).Str("username", username).Msg("github returned error")
		return nil, fmt.Errorf("%w: status %d", model.ErrGithubUnavailable, resp.StatusCode)
	}

	var repos []model.GithubRepo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", model.ErrGithubUnavailable, err)
	}
	if repos == nil {
		repos = []model.GithubRepo{}
	}
	return repos, nil
}
