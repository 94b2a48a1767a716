package http

import (
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"devconnector/internal/handler"
	"devconnector/internal/model"
	"devconnector/internal/ratelimit"
)

type rejectAll struct{}

func (rejectAll) Verify(string) (string, error) { return "", model.ErrInvalidToken }

func testRouter(limit int) stdhttp.Handler {
	return NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(nil, nil),
		UserHandler:    handler.NewUserHandler(nil),
		ProfileHandler: handler.NewProfileHandler(nil, nil),
		PostHandler:    handler.NewPostHandler(nil),
		Tokens:         rejectAll{},
		Limiter:        ratelimit.NewLocalLimiter(limit, time.Minute),
		RequestTimeout: time.Second,
	})
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(10).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/health", nil))

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(10).ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/metrics", nil))

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(10)
	routes := []struct{ method, path string }{
		{stdhttp.MethodGet, "/api/users/me"},
		{stdhttp.MethodGet, "/api/profiles/me"},
		{stdhttp.MethodDelete, "/api/profiles/me"},
		{stdhttp.MethodPost, "/api/profiles"},
		{stdhttp.MethodPut, "/api/profiles/experience/abc"},
		{stdhttp.MethodDelete, "/api/profiles/education/abc"},
		{stdhttp.MethodPost, "/api/articles"},
		{stdhttp.MethodDelete, "/api/articles/abc"},
		{stdhttp.MethodPut, "/api/articles/like/abc"},
		{stdhttp.MethodPut, "/api/articles/unlike/abc"},
		{stdhttp.MethodPost, "/api/articles/comment/abc"},
		{stdhttp.MethodDelete, "/api/articles/comment/abc/def"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	r := testRouter(1)

	send := func() int {
		req := httptest.NewRequest(stdhttp.MethodPost, "/api/auth/login", strings.NewReader("{"))
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, stdhttp.StatusBadRequest, send(), "malformed body is rejected before the service")
	assert.Equal(t, stdhttp.StatusTooManyRequests, send())
}
