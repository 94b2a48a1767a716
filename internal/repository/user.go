package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"devconnector/internal/model"
)

const userColumns = `id, email, username, password_hashed, avatar,
	reset_password_token, reset_password_expires, created_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, email, username, password_hashed, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHashed,
		u.Avatar,
	).Scan(&u.CreatedAt)
	if err != nil {
		switch uniqueViolation(err) {
		case "users_email_key":
			return model.ErrEmailExists
		case "users_username_key":
			return model.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, model.ErrUserNotFound
	}
	return r.getOne(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (*model.User, error) {
	u, err := r.getOne(ctx, "reset_password_token", token)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrResetTokenNotFound
	}
	return u, err
}

// getOne loads a user by a unique column. column is never user input.
func (r *userRepository) getOne(ctx context.Context, column, value string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID string, token *string, expires *time.Time) error {
	query := `UPDATE users SET reset_password_token = $1, reset_password_expires = $2 WHERE id = $3`
	return r.execOne(ctx, "set reset token", query, token, expires, userID)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHashed string) error {
	query := `
		UPDATE users
		SET password_hashed = $1, reset_password_token = NULL, reset_password_expires = NULL
		WHERE id = $2
	`
	return r.execOne(ctx, "update password", query, passwordHashed, userID)
}

// Delete relies on ON DELETE CASCADE for profile, posts, likes and comments.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	if !validID(userID) {
		return model.ErrUserNotFound
	}
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, userID)
}

func (r *userRepository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
