// Package client is a Go client for the DevConnector API together with
// state containers that keep server responses in an observable state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// TokenHeader carries the session token.
const TokenHeader = "x-auth-token"

// TokenStore persists the session token between requests.
type TokenStore interface {
	Token() string
	SetToken(token string)
	ClearToken()
}

// MemoryTokenStore keeps the token in process memory.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemoryTokenStore) ClearToken() {
	s.SetToken("")
}

// FieldError is one entry of a validation failure.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
	Value string `json:"value,omitempty"`
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status int
	Msg    string
	Code   string
	Errors []FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Msg)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Msg)
}

// StatusOf returns the HTTP status of an *APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client calls the REST API under baseURL (for example
// "http://localhost:8080/api").
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client. A nil tokens uses an empty MemoryTokenStore.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the store the client reads the session token from.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// envelope is the union of payload fields the API sends.
type envelope struct {
	Success  bool         `json:"success"`
	Msg      string       `json:"msg"`
	Code     string       `json:"code"`
	Errors   []FieldError `json:"errors"`
	Token    string       `json:"token"`
	User     *User        `json:"user"`
	Profile  *Profile     `json:"profile"`
	Profiles []Profile    `json:"profiles"`
	Repos    []Repo       `json:"repos"`
	Post     *Post        `json:"post"`
	Posts    []Post       `json:"posts"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Msg: env.Msg, Code: env.Code, Errors: env.Errors}
		if apiErr.Msg == "" {
			apiErr.Msg = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return &env, nil
}

// Auth

func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/register", in)
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

// CheckUsername returns nil when the username is free.
func (c *Client) CheckUsername(ctx context.Context, username string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register_check/username", map[string]string{"username": username})
	return err
}

// CheckEmail returns nil when the email is free.
func (c *Client) CheckEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/register_check/email", map[string]string{"email": email})
	return err
}

func (c *Client) Login(ctx context.Context, in LoginInput) (string, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/login", in)
	if err != nil {
		return "", err
	}
	return env.Token, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/forgot", map[string]string{"email": email})
	return err
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset/"+url.PathEscape(token), map[string]string{"password": password})
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	env, err := c.do(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

// Profiles

func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	env, err := c.do(ctx, http.MethodGet, "/profiles/all", nil)
	if err != nil {
		return nil, err
	}
	return env.Profiles, nil
}

func (c *Client) MyProfile(ctx context.Context) (*Profile, error) {
	return c.profileCall(ctx, http.MethodGet, "/profiles/me", nil)
}

func (c *Client) ProfileByUser(ctx context.Context, userID string) (*Profile, error) {
	return c.profileCall(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil)
}

func (c *Client) CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPost, "/profiles", in)
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPut, "/profiles", in)
}

func (c *Client) AddExperience(ctx context.Context, in ExperienceInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPost, "/profiles/experience", in)
}

func (c *Client) UpdateExperience(ctx context.Context, id string, in ExperienceInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPut, "/profiles/experience/"+url.PathEscape(id), in)
}

func (c *Client) DeleteExperience(ctx context.Context, id string) (*Profile, error) {
	return c.profileCall(ctx, http.MethodDelete, "/profiles/experience/"+url.PathEscape(id), nil)
}

func (c *Client) AddEducation(ctx context.Context, in EducationInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPost, "/profiles/education", in)
}

func (c *Client) UpdateEducation(ctx context.Context, id string, in EducationInput) (*Profile, error) {
	return c.profileCall(ctx, http.MethodPut, "/profiles/education/"+url.PathEscape(id), in)
}

func (c *Client) DeleteEducation(ctx context.Context, id string) (*Profile, error) {
	return c.profileCall(ctx, http.MethodDelete, "/profiles/education/"+url.PathEscape(id), nil)
}

// DeleteAccount removes the account, its profile and its posts.
func (c *Client) DeleteAccount(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/profiles/me", nil)
	return err
}

func (c *Client) GithubRepos(ctx context.Context, username string) ([]Repo, error) {
	env, err := c.do(ctx, http.MethodGet, "/profiles/github/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, err
	}
	return env.Repos, nil
}

func (c *Client) profileCall(ctx context.Context, method, path string, body interface{}) (*Profile, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return env.Profile, nil
}

// Posts

func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	env, err := c.do(ctx, http.MethodGet, "/articles/all", nil)
	if err != nil {
		return nil, err
	}
	return env.Posts, nil
}

func (c *Client) Post(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodGet, "/articles/"+url.PathEscape(id), nil)
}

func (c *Client) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	return c.postCall(ctx, http.MethodPost, "/articles", in)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) Like(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodPut, "/articles/like/"+url.PathEscape(id), nil)
}

func (c *Client) Unlike(ctx context.Context, id string) (*Post, error) {
	return c.postCall(ctx, http.MethodPut, "/articles/unlike/"+url.PathEscape(id), nil)
}

func (c *Client) Comment(ctx context.Context, postID, text string) (*Post, error) {
	return c.postCall(ctx, http.MethodPost, "/articles/comment/"+url.PathEscape(postID), map[string]string{"text": text})
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) (*Post, error) {
	return c.postCall(ctx, http.MethodDelete, "/articles/comment/"+url.PathEscape(postID)+"/"+url.PathEscape(commentID), nil)
}

func (c *Client) postCall(ctx context.Context, method, path string, body interface{}) (*Post, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return env.Post, nil
}
