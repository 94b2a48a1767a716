package model

import (
	"errors"
	"strings"
	"time"

	"devconnector/internal/validation"
)

// User represents an account. Password and reset fields never leave the server.
type User struct {
	ID                   string     `db:"id" bson:"_id" json:"_id"`
	Email                string     `db:"email" bson:"email" json:"email"`
	Username             string     `db:"username" bson:"username" json:"username"`
	PasswordHashed       string     `db:"password_hashed" bson:"password" json:"-"`
	Avatar               string     `db:"avatar" bson:"avatar" json:"avatar"`
	ResetPasswordToken   *string    `db:"reset_password_token" bson:"reset_password_token,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `db:"reset_password_expires" bson:"reset_password_expires,omitempty" json:"-"`
	CreatedAt            time.Time  `db:"created_at" bson:"date" json:"date"`
}

// Summary is the populated form embedded in profiles.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Avatar: u.Avatar, Email: u.Email, Username: u.Username}
}

// UserSummary is the subset of a user shown next to profiles.
type UserSummary struct {
	ID       string `db:"id" bson:"_id" json:"_id"`
	Avatar   string `db:"avatar" bson:"avatar" json:"avatar"`
	Email    string `db:"email" bson:"email" json:"email"`
	Username string `db:"username" bson:"username" json:"username"`
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`

	// Set by the handler when a multipart avatar was sent.
	Avatar *AvatarUpload `json:"-"`
}

// Validate normalises the fields in place, then checks them.
func (r *RegisterRequest) Validate() error {
	r.Email = validation.NormalizeEmail(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.Password = strings.TrimSpace(r.Password)
	var errs validation.Errors
	validation.CheckEmail(&errs, r.Email)
	validation.CheckUsername(&errs, r.Username)
	validation.CheckPassword(&errs, r.Password)
	return errs.Err()
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = validation.NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	var errs validation.Errors
	validation.CheckEmail(&errs, r.Email)
	validation.CheckLoginPassword(&errs, r.Password)
	return errs.Err()
}

// AvailabilityRequest is the body of the register_check endpoints.
type AvailabilityRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ForgotPasswordRequest starts password recovery.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = validation.NormalizeEmail(r.Email)
	var errs validation.Errors
	validation.CheckEmail(&errs, r.Email)
	return errs.Err()
}

// ResetPasswordRequest carries the new password; the token is in the path.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	r.Password = strings.TrimSpace(r.Password)
	var errs validation.Errors
	validation.CheckPassword(&errs, r.Password)
	return errs.Err()
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrResetTokenNotFound = errors.New("password reset token is invalid")
	ErrResetTokenExpired  = errors.New("password reset token has expired")

	// ErrMailDelivery is returned when the reset email could not be sent.
	ErrMailDelivery = errors.New("failed to send reset email")
)
