package repository

import (
	"context"
	"time"

	"devconnector/internal/model"
)

// Every method is atomic on its own. Implementations translate driver
// errors into the sentinels of package model.

type UserRepository interface {
	// Create assigns ID and CreatedAt. Returns ErrEmailExists or
	// ErrUsernameExists on a uniqueness conflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByResetToken(ctx context.Context, token string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SetResetToken stores (or clears, with nil values) the recovery token.
	SetResetToken(ctx context.Context, userID string, token *string, expires *time.Time) error
	// UpdatePassword replaces the hash and clears any recovery token.
	UpdatePassword(ctx context.Context, userID, passwordHashed string) error
	// Delete removes the user together with their profile, posts, likes
	// and comments.
	Delete(ctx context.Context, userID string) error
}

type ProfileRepository interface {
	// Create returns ErrProfileExists when the user already has one.
	Create(ctx context.Context, profile *model.Profile) error
	// Update replaces the top-level fields of the user's profile.
	Update(ctx context.Context, profile *model.Profile) error
	// GetByUserID returns the profile with its user populated.
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// List returns all profiles, newest first, populated.
	List(ctx context.Context) ([]model.Profile, error)

	AddExperience(ctx context.Context, userID string, exp *model.Experience) error
	UpdateExperience(ctx context.Context, userID string, exp *model.Experience) error
	DeleteExperience(ctx context.Context, userID, experienceID string) error

	AddEducation(ctx context.Context, userID string, edu *model.Education) error
	UpdateEducation(ctx context.Context, userID string, edu *model.Education) error
	DeleteEducation(ctx context.Context, userID, educationID string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]model.Post, error)
	Delete(ctx context.Context, postID string) error

	// Like returns ErrAlreadyLiked when like.UserID already liked the post.
	Like(ctx context.Context, postID string, like *model.Like) error
	// Unlike returns ErrNotYetLiked when there is no like to remove.
	Unlike(ctx context.Context, postID, userID string) error

	AddComment(ctx context.Context, postID string, comment *model.Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error
}
