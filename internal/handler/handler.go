package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"devconnector/internal/httputil"
	"devconnector/internal/model"
	"devconnector/internal/transport/http/middleware"
	"devconnector/internal/validation"
)

const maxJSONBody = 1 << 20

// decodeJSON reads the request body into dst. On failure it writes a 400, or
// a 413 past maxJSONBody, and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WritePayloadTooLarge(w, "Request body too large")
			return false
		}
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// currentUser returns the authenticated user id, writing a 401 when the
// route was mounted without the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "No authentication token, authorization denied")
	}
	return userID, ok
}

// writeError maps service errors to responses. Unknown errors are logged
// and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		httputil.WriteValidationErrors(w, verrs)
		return
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrUsernameExists):
		httputil.WriteConflict(w, "Username already exists")
	case errors.Is(err, model.ErrEmailExists):
		httputil.WriteConflict(w, "Email already exists")
	case errors.Is(err, model.ErrInvalidCredentials):
		httputil.WriteForbidden(w, "Invalid credentials")
	case errors.Is(err, model.ErrResetTokenNotFound):
		httputil.WriteNotFound(w, "Password reset token is invalid")
	case errors.Is(err, model.ErrResetTokenExpired):
		httputil.WriteBadRequestWithCode(w, httputil.ErrCodeResetExpired, "Password reset token has expired")
	case errors.Is(err, model.ErrMailDelivery):
		httputil.WriteBadGateway(w, "Failed to send reset email")

	case errors.Is(err, model.ErrProfileNotFound):
		httputil.WriteNotFound(w, "There is no profile for this user")
	case errors.Is(err, model.ErrProfileExists):
		httputil.WriteConflict(w, "Profile already exists")
	case errors.Is(err, model.ErrExperienceNotFound):
		httputil.WriteNotFound(w, "Experience not found")
	case errors.Is(err, model.ErrEducationNotFound):
		httputil.WriteNotFound(w, "Education not found")
	case errors.Is(err, model.ErrGithubNotFound):
		httputil.WriteNotFound(w, "Github profile not found")
	case errors.Is(err, model.ErrGithubUnavailable):
		httputil.WriteBadGateway(w, "Failed to reach GitHub")

	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrNotPostOwner), errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "User not authorized")
	case errors.Is(err, model.ErrAlreadyLiked):
		httputil.WriteBadRequest(w, "Post has already been liked")
	case errors.Is(err, model.ErrNotYetLiked):
		httputil.WriteBadRequest(w, "Post has not yet been liked")

	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")

	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		httputil.WriteInternalError(w, "Server error")
	}
}
