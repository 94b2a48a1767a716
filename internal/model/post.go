package model

import (
	"errors"
	"strings"
	"time"

	"devconnector/internal/validation"
)

// Post is an article. Avatar and Username are snapshots of the author taken
// at creation time. Likes and Comments are ordered newest first.
type Post struct {
	ID        string    `db:"id" bson:"_id" json:"_id"`
	UserID    string    `db:"user_id" bson:"user" json:"user"`
	Title     string    `db:"title" bson:"title" json:"title"`
	Content   string    `db:"content" bson:"content" json:"content"`
	Avatar    string    `db:"avatar" bson:"avatar" json:"avatar"`
	Username  string    `db:"username" bson:"username" json:"username"`
	Likes     []Like    `db:"-" bson:"likes" json:"likes"`
	Comments  []Comment `db:"-" bson:"comments" json:"comments"`
	CreatedAt time.Time `db:"created_at" bson:"date" json:"date"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// Like is one user's like on a post. A user likes a post at most once.
type Like struct {
	ID        string    `db:"id" bson:"_id" json:"_id"`
	PostID    string    `db:"post_id" bson:"-" json:"-"`
	UserID    string    `db:"user_id" bson:"user" json:"user"`
	CreatedAt time.Time `db:"created_at" bson:"date" json:"date"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate trims both fields in place and requires them.
func (r *CreatePostRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	var errs validation.Errors
	validation.Required(&errs, "title", r.Title, validation.MsgTitleRequired)
	validation.Required(&errs, "content", r.Content, validation.MsgContentRequired)
	return errs.Err()
}

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
	ErrAlreadyLiked = errors.New("post has already been liked")
	ErrNotYetLiked  = errors.New("post has not yet been liked")
)
