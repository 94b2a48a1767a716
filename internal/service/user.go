package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"devconnector/internal/logging"
	"devconnector/internal/model"
	"devconnector/internal/queue"
	"devconnector/internal/repository"
)

// UserService handles registration, login and account removal.
type UserService struct {
	repo   repository.UserRepository
	tokens *TokenService

	// Both optional. With a publisher the worker removes the avatar object,
	// otherwise it is removed inline when avatars is set.
	publisher queue.Publisher
	avatars   Avatars

	log zerolog.Logger
}

func NewUserService(repo repository.UserRepository, tokens *TokenService, publisher queue.Publisher, avatars Avatars) *UserService {
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		publisher: publisher,
		avatars:   avatars,
		log:       logging.For("user_service"),
	}
}

// GravatarURL returns the generated avatar for an email address.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&d=retro"
}

// Register validates the request, stores the account and returns a token.
// An avatar sent with the request is stored under the new user's id and
// removed again when the account cannot be created.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
		Avatar:         GravatarURL(req.Email),
	}

	uploaded := false
	if req.Avatar != nil && s.avatars != nil {
		url, err := s.avatars.Save(ctx, user.ID, req.Avatar)
		if err != nil {
			return "", err
		}
		user.Avatar = url
		uploaded = true
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if uploaded {
			s.removeAvatar(ctx, user.ID)
		}
		if errors.Is(err, model.ErrEmailExists) || errors.Is(err, model.ErrUsernameExists) {
			return "", err
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str(logging.UserID, user.ID).Bool("uploaded_avatar", uploaded).Msg("user registered")
	return s.tokens.Issue(user.ID)
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return "", model.ErrInvalidCredentials
	}

	return s.tokens.Issue(user.ID)
}

// CheckUsername returns ErrUsernameExists when the name is taken.
func (s *UserService) CheckUsername(ctx context.Context, username string) error {
	exists, err := s.repo.ExistsByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return model.ErrUsernameExists
	}
	return nil
}

// CheckEmail returns ErrEmailExists when the address is taken.
func (s *UserService) CheckEmail(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return model.ErrEmailExists
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// DeleteAccount removes the user with all their content. Cleanup of the
// avatar object is best effort and never fails the request.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.log.Info().Str(logging.UserID, userID).Msg("account deleted")

	if !hasUploadedAvatar(user) {
		return nil
	}

	if s.publisher != nil {
		event := queue.NewAccountDeletedEvent(userID, true)
		_, err := s.publisher.Publish(ctx, queue.StreamAccount, event)
		if err == nil {
			return nil
		}
		s.log.Warn().Err(err).Str(logging.UserID, userID).Msg("publish account_deleted failed, cleaning up inline")
	}
	if s.avatars != nil {
		s.removeAvatar(ctx, userID)
	}
	return nil
}

// hasUploadedAvatar reports whether the avatar is an upload rather than the
// generated gravatar.
func hasUploadedAvatar(u *model.User) bool {
	return u.Avatar != "" && u.Avatar != GravatarURL(u.Email)
}

func (s *UserService) removeAvatar(ctx context.Context, userID string) {
	if err := s.avatars.Remove(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str(logging.UserID, userID).Msg("avatar cleanup failed")
	}
}
