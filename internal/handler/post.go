package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devconnector/internal/httputil"
	"devconnector/internal/model"
)

// Posts is implemented by service.PostService.
type Posts interface {
	Create(ctx context.Context, userID string, req *model.CreatePostRequest) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	Delete(ctx context.Context, postID, userID string) error
	Like(ctx context.Context, postID, userID string) (*model.Post, error)
	Unlike(ctx context.Context, postID, userID string) (*model.Post, error)
	Comment(ctx context.Context, postID, userID string, req *model.CreateCommentRequest) (*model.Post, error)
	DeleteComment(ctx context.Context, postID, commentID, userID string) (*model.Post, error)
}

type PostHandler struct {
	posts Posts
}

func NewPostHandler(posts Posts) *PostHandler {
	return &PostHandler{posts: posts}
}

// List handles GET /articles/all
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Got all posts successfully", httputil.Envelope{"posts": posts})
}

// Get handles GET /articles/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Got the post successfully", httputil.Envelope{"post": post})
}

// Create handles POST /articles
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Created a new post successfully", httputil.Envelope{"post": post})
}

// Delete handles DELETE /articles/{id}. Only the author may delete.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Deleted the post successfully", nil)
}

// Like handles PUT /articles/like/{id}
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Like(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Liked a post successfully", httputil.Envelope{"post": post})
}

// Unlike handles PUT /articles/unlike/{id}
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Unlike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Unliked a post successfully", httputil.Envelope{"post": post})
}

// Comment handles POST /articles/comment/{id}
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.posts.Comment(r.Context(), chi.URLParam(r, "id"), userID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Created a new comment successfully", httputil.Envelope{"post": post})
}

// DeleteComment handles DELETE /articles/comment/{id}/{comment_id}
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	post, err := h.posts.DeleteComment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httputil.WriteOK(w, "Deleted the comment successfully", httputil.Envelope{"post": post})
}
