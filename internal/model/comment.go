package model

import (
	"errors"
	"strings"
	"time"

	"devconnector/internal/validation"
)

// Comment is a comment on a post with author snapshots.
type Comment struct {
	ID        string    `db:"id" bson:"_id" json:"_id"`
	PostID    string    `db:"post_id" bson:"-" json:"-"`
	UserID    string    `db:"user_id" bson:"user" json:"user"`
	Text      string    `db:"text" bson:"text" json:"text"`
	Avatar    string    `db:"avatar" bson:"avatar" json:"avatar"`
	Username  string    `db:"username" bson:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" bson:"date" json:"date"`
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

func (r *CreateCommentRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	var errs validation.Errors
	validation.Required(&errs, "text", r.Text, validation.MsgTextRequired)
	return errs.Err()
}

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
)
