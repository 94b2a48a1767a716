package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"devconnector/internal/logging"
	"devconnector/internal/model"
	"devconnector/internal/repository"
)

const resetSubject = "[DevConnector] Please reset your password"

// RecoveryService implements forgot/reset password with emailed tokens.
type RecoveryService struct {
	repo      repository.UserRepository
	mailer    Mailer
	clientURL string
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewRecoveryService(repo repository.UserRepository, mailer Mailer, clientURL string, ttl time.Duration) *RecoveryService {
	return &RecoveryService{
		repo:      repo,
		mailer:    mailer,
		clientURL: clientURL,
		ttl:       ttl,
		now:       time.Now,
		log:       logging.For("recovery_service"),
	}
}

// Forgot issues a reset token and mails the link. Unknown addresses succeed
// silently. When the mail cannot be delivered the token is cleared again and
// ErrMailDelivery is returned.
func (s *RecoveryService) Forgot(ctx context.Context, req *model.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.log.Debug().Msg("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.ttl)
	if err := s.repo.SetResetToken(ctx, user.ID, &token, &expires); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	err = s.mailer.Send(ctx, Mail{
		ToEmail: user.Email,
		ToName:  user.Username,
		Subject: resetSubject,
		Text:    s.resetText(user.Username, token),
	})
	if err != nil {
		s.log.Error().Err(err).Str(logging.UserID, user.ID).Msg("reset email failed")
		if cerr := s.repo.SetResetToken(ctx, user.ID, nil, nil); cerr != nil {
			s.log.Error().Err(cerr).Str(logging.UserID, user.ID).Msg("failed to clear reset token")
		}
		return model.ErrMailDelivery
	}

	s.log.Info().Str(logging.UserID, user.ID).Msg("reset email sent")
	return nil
}

// Reset sets a new password for the holder of a valid token.
func (s *RecoveryService) Reset(ctx context.Context, token string, req *model.ResetPasswordRequest) error {
	user, err := s.repo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.ResetPasswordExpires == nil || !s.now().Before(*user.ResetPasswordExpires) {
		if err := s.repo.SetResetToken(ctx, user.ID, nil, nil); err != nil {
			s.log.Error().Err(err).Str(logging.UserID, user.ID).Msg("failed to clear expired reset token")
		}
		return model.ErrResetTokenExpired
	}

	if err := req.Validate(); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info().Str(logging.UserID, user.ID).Msg("password reset")
	return nil
}

func (s *RecoveryService) resetText(username, token string) string {
	return fmt.Sprintf("Hi %s,\n\n"+
		"You are receiving this because you (or someone else) have requested the reset of the password for your account.\n\n"+
		"Please click on the following link, or paste this into your browser to complete the process:\n\n"+
		"%s/reset/%s\n\n"+
		"If you did not request this, please ignore this email and your password will remain unchanged.\n",
		username, s.clientURL, token)
}

func newResetToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
