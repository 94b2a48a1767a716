package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"devconnector/internal/httputil"
	"devconnector/internal/model"
)

// Accounts is the account side of the user service.
type Accounts interface {
	Register(ctx context.Context, req *model.RegisterRequest) (string, error)
	Login(ctx context.Context, req *model.LoginRequest) (string, error)
	CheckUsername(ctx context.Context, username string) error
	CheckEmail(ctx context.Context, email string) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// Recovery issues and redeems password reset tokens.
type Recovery interface {
	Forgot(ctx context.Context, req *model.ForgotPasswordRequest) error
	Reset(ctx context.Context, token string, req *model.ResetPasswordRequest) error
}

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	accounts Accounts
	recovery Recovery
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(accounts Accounts, recovery Recovery) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		recovery: recovery,
	}
}

// Register handles POST /auth/register. The body is JSON, or a multipart form
// with the same fields and an optional "avatar" file.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if !h.parseRegisterForm(w, r, &req) {
			return
		}
	} else if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "Signed up successfully", httputil.Envelope{"token": token})
}

func (h *AuthHandler) parseRegisterForm(w http.ResponseWriter, r *http.Request, req *model.RegisterRequest) bool {
	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
			return false
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return false
	}

	req.Email = r.FormValue("email")
	req.Username = r.FormValue("username")
	req.Password = r.FormValue("password")

	file, _, err := r.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		return true
	}
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid avatar upload")
		return false
	}
	defer file.Close()

	avatar, err := readAvatar(file)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	req.Avatar = avatar
	return true
}

// readAvatar loads the avatar part and checks its sniffed type and size.
// Storing it is up to the account service.
func readAvatar(file io.Reader) (*model.AvatarUpload, error) {
	data, err := io.ReadAll(io.LimitReader(file, model.MaxAvatarSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	avatar := model.NewAvatarUpload(data)
	if err := avatar.Check(); err != nil {
		return nil, err
	}
	return avatar, nil
}

// CheckUsername handles POST /auth/register_check/username.
func (h *AuthHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req model.AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	if err := h.accounts.CheckUsername(r.Context(), req.Username); err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Username is available", nil)
}

// CheckEmail handles POST /auth/register_check/email.
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req model.AvailabilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.accounts.CheckEmail(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Email is available", nil)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "Logged in successfully", httputil.Envelope{"token": token})
}

// Forgot handles POST /auth/forgot. The answer does not reveal whether the
// address belongs to an account.
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req model.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.recovery.Forgot(r.Context(), &req); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "If an account exists for "+req.Email+", a reset email has been sent.", nil)
}

// Reset handles POST /auth/reset/{token}
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.recovery.Reset(r.Context(), chi.URLParam(r, "token"), &req); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "Your password has been reset", nil)
}
