package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/handler"
	"devconnector/internal/httputil"
	"devconnector/internal/model"
	"devconnector/internal/transport/http/middleware"
	"devconnector/internal/validation"
)

// fixedTokens accepts "good-<user id>" tokens.
type fixedTokens struct{}

func (fixedTokens) Verify(token string) (string, error) {
	if len(token) > 5 && token[:5] == "good-" {
		return token[5:], nil
	}
	return "", model.ErrInvalidToken
}

type stubAccounts struct {
	register      func(ctx context.Context, req *model.RegisterRequest) (string, error)
	login         func(ctx context.Context, req *model.LoginRequest) (string, error)
	checkUsername func(ctx context.Context, username string) error
	checkEmail    func(ctx context.Context, email string) error
	getByID       func(ctx context.Context, id string) (*model.User, error)
	deleteAccount func(ctx context.Context, userID string) error
}

func (s *stubAccounts) Register(ctx context.Context, req *model.RegisterRequest) (string, error) {
	return s.register(ctx, req)
}

func (s *stubAccounts) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	return s.login(ctx, req)
}

func (s *stubAccounts) CheckUsername(ctx context.Context, username string) error {
	return s.checkUsername(ctx, username)
}

func (s *stubAccounts) CheckEmail(ctx context.Context, email string) error {
	return s.checkEmail(ctx, email)
}

func (s *stubAccounts) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getByID(ctx, id)
}

func (s *stubAccounts) DeleteAccount(ctx context.Context, userID string) error {
	return s.deleteAccount(ctx, userID)
}

type stubRecovery struct {
	forgot func(ctx context.Context, req *model.ForgotPasswordRequest) error
	reset  func(ctx context.Context, token string, req *model.ResetPasswordRequest) error
}

func (s *stubRecovery) Forgot(ctx context.Context, req *model.ForgotPasswordRequest) error {
	return s.forgot(ctx, req)
}

func (s *stubRecovery) Reset(ctx context.Context, token string, req *model.ResetPasswordRequest) error {
	return s.reset(ctx, token, req)
}

type response struct {
	Success bool                    `json:"success"`
	Msg     string                  `json:"msg"`
	Code    string                  `json:"code"`
	Errors  []validation.FieldError `json:"errors"`
	Token   string                  `json:"token"`
	User    *model.User             `json:"user"`
	Post    *model.Post             `json:"post"`
	Posts   []model.Post            `json:"posts"`
	Profile *model.Profile          `json:"profile"`
	Repos   []model.GithubRepo      `json:"repos"`
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func authRouter(accounts handler.Accounts, recovery handler.Recovery) http.Handler {
	auth := handler.NewAuthHandler(accounts, recovery)
	users := handler.NewUserHandler(accounts)

	r := chi.NewRouter()
	r.Post("/auth/register", auth.Register)
	r.Post("/auth/register_check/username", auth.CheckUsername)
	r.Post("/auth/register_check/email", auth.CheckEmail)
	r.Post("/auth/login", auth.Login)
	r.Post("/auth/forgot", auth.Forgot)
	r.Post("/auth/reset/{token}", auth.Reset)
	r.With(middleware.AuthMiddleware(fixedTokens{})).Get("/users/me", users.Me)
	r.With(middleware.AuthMiddleware(fixedTokens{})).Delete("/profiles/me", users.Delete)
	return r
}

func TestRegister_JSON(t *testing.T) {
	accounts := &stubAccounts{register: func(ctx context.Context, req *model.RegisterRequest) (string, error) {
		assert.Equal(t, "ann@example.com", req.Email)
		assert.Nil(t, req.Avatar)
		return "jwt-token", nil
	}}
	h := authRouter(accounts, nil)

	rec, resp := do(t, h, http.MethodPost, "/auth/register",
		map[string]string{"email": "ann@example.com", "username": "ann", "password": "secret1"}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Signed up successfully", resp.Msg)
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestRegister_ServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"email taken", model.ErrEmailExists, http.StatusConflict, "Email already exists"},
		{"username taken", model.ErrUsernameExists, http.StatusConflict, "Username already exists"},
		{"validation", validation.Errors{{Param: "email", Msg: "Please include a valid email"}}, http.StatusBadRequest, "Validation failed"},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, "Server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accounts := &stubAccounts{register: func(context.Context, *model.RegisterRequest) (string, error) {
				return "", tc.err
			}}
			rec, resp := do(t, authRouter(accounts, nil), http.MethodPost, "/auth/register",
				map[string]string{"email": "a@b.co"}, "")

			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.msg, resp.Msg)
		})
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	h := authRouter(&stubAccounts{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func multipartRegister(t *testing.T, fields map[string]string, avatar []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if avatar != nil {
		fw, err := mw.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = fw.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRegister_MultipartWithAvatar(t *testing.T) {
	avatar := append(append([]byte{}, pngHeader...), "rest"...)
	accounts := &stubAccounts{register: func(ctx context.Context, req *model.RegisterRequest) (string, error) {
		require.NotNil(t, req.Avatar)
		assert.Equal(t, avatar, req.Avatar.Data)
		assert.Equal(t, "image/png", req.Avatar.ContentType)
		assert.Equal(t, "ann", req.Username)
		return "jwt-token", nil
	}}

	req := multipartRegister(t, map[string]string{
		"email": "ann@example.com", "username": "ann", "password": "correcthorse2024x",
	}, avatar)
	rec := httptest.NewRecorder()
	authRouter(accounts, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_MultipartWithoutAvatar(t *testing.T) {
	accounts := &stubAccounts{register: func(ctx context.Context, req *model.RegisterRequest) (string, error) {
		assert.Nil(t, req.Avatar)
		assert.Equal(t, "ann@example.com", req.Email)
		return "jwt-token", nil
	}}

	req := multipartRegister(t, map[string]string{
		"email": "ann@example.com", "username": "ann", "password": "correcthorse2024x",
	}, nil)
	rec := httptest.NewRecorder()
	authRouter(accounts, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_MultipartBadImage(t *testing.T) {
	accounts := &stubAccounts{register: func(context.Context, *model.RegisterRequest) (string, error) {
		t.Fatal("register must not be called")
		return "", nil
	}}
	req := multipartRegister(t, map[string]string{
		"email": "ann@example.com", "username": "ann", "password": "correcthorse2024x",
	}, []byte("just some text"))
	rec := httptest.NewRecorder()
	authRouter(accounts, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.CodeInvalidImageType, resp.Code)
}

func TestLogin_BodyTooLarge(t *testing.T) {
	body := `{"email":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	authRouter(&stubAccounts{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, httputil.ErrCodeEntityTooLarge, resp.Code)
}

func TestCheckUsername(t *testing.T) {
	accounts := &stubAccounts{checkUsername: func(ctx context.Context, username string) error {
		if username == "taken" {
			return model.ErrUsernameExists
		}
		return nil
	}}
	h := authRouter(accounts, nil)

	rec, resp := do(t, h, http.MethodPost, "/auth/register_check/username", map[string]string{"username": "free"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Username is available", resp.Msg)

	rec, _ = do(t, h, http.MethodPost, "/auth/register_check/username", map[string]string{"username": "taken"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/auth/register_check/username", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckEmail(t *testing.T) {
	accounts := &stubAccounts{checkEmail: func(ctx context.Context, email string) error {
		return model.ErrEmailExists
	}}
	rec, resp := do(t, authRouter(accounts, nil), http.MethodPost, "/auth/register_check/email",
		map[string]string{"email": "ann@example.com"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already exists", resp.Msg)
}

func TestLogin(t *testing.T) {
	accounts := &stubAccounts{login: func(ctx context.Context, req *model.LoginRequest) (string, error) {
		if req.Password != "secret1" {
			return "", model.ErrInvalidCredentials
		}
		return "jwt-token", nil
	}}
	h := authRouter(accounts, nil)

	rec, resp := do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.co", "password": "secret1"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jwt-token", resp.Token)

	rec, resp = do(t, h, http.MethodPost, "/auth/login", map[string]string{"email": "a@b.co", "password": "wrong"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid credentials", resp.Msg)
}

func TestForgot_SameAnswerForUnknownEmail(t *testing.T) {
	recovery := &stubRecovery{forgot: func(context.Context, *model.ForgotPasswordRequest) error { return nil }}
	rec, resp := do(t, authRouter(&stubAccounts{}, recovery), http.MethodPost, "/auth/forgot",
		map[string]string{"email": "ghost@example.com"}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "If an account exists for ghost@example.com, a reset email has been sent.", resp.Msg)
}

func TestForgot_MailFailure(t *testing.T) {
	recovery := &stubRecovery{forgot: func(context.Context, *model.ForgotPasswordRequest) error { return model.ErrMailDelivery }}
	rec, _ := do(t, authRouter(&stubAccounts{}, recovery), http.MethodPost, "/auth/forgot",
		map[string]string{"email": "ann@example.com"}, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestReset(t *testing.T) {
	var gotToken string
	recovery := &stubRecovery{reset: func(ctx context.Context, token string, req *model.ResetPasswordRequest) error {
		gotToken = token
		switch token {
		case "expired":
			return model.ErrResetTokenExpired
		case "missing":
			return model.ErrResetTokenNotFound
		}
		return nil
	}}
	h := authRouter(&stubAccounts{}, recovery)

	rec, resp := do(t, h, http.MethodPost, "/auth/reset/abc123", map[string]string{"password": "newpass"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your password has been reset", resp.Msg)
	assert.Equal(t, "abc123", gotToken)

	rec, resp = do(t, h, http.MethodPost, "/auth/reset/expired", map[string]string{"password": "newpass"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "RESET_TOKEN_EXPIRED", resp.Code)

	rec, _ = do(t, h, http.MethodPost, "/auth/reset/missing", map[string]string{"password": "newpass"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMe(t *testing.T) {
	accounts := &stubAccounts{getByID: func(ctx context.Context, id string) (*model.User, error) {
		return &model.User{ID: id, Username: "ann", PasswordHashed: "hash"}, nil
	}}
	h := authRouter(accounts, nil)

	rec, resp := do(t, h, http.MethodGet, "/users/me", nil, "good-u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Authentication successful", resp.Msg)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u1", resp.User.ID)
	assert.NotContains(t, rec.Body.String(), "hash")

	rec, _ = do(t, h, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteAccount(t *testing.T) {
	var deleted string
	accounts := &stubAccounts{deleteAccount: func(ctx context.Context, userID string) error {
		deleted = userID
		return nil
	}}
	rec, resp := do(t, authRouter(accounts, nil), http.MethodDelete, "/profiles/me", nil, "good-u9")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully", resp.Msg)
	assert.Equal(t, "u9", deleted)
}
