package handler

import (
	"net/http"

	"devconnector/internal/httputil"
)

type UserHandler struct {
	accounts Accounts
}

func NewUserHandler(accounts Accounts) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.accounts.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "Authentication successful", httputil.Envelope{"user": user})
}

// Delete handles DELETE /profiles/me: the account, its profile and all of
// its posts, likes and comments.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	httputil.WriteOK(w, "User deleted successfully", nil)
}
