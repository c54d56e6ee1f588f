package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meublog/blog-api/internal/domain/entity"
	"github.com/meublog/blog-api/internal/domain/repository"
	"github.com/meublog/blog-api/pkg/helpers"
	"github.com/meublog/blog-api/pkg/mailer"
)

var ErrResetTokenInvalid = errors.New("invalid or expired token")

// AuthService runs the password-reset flow: issue a single-use token with
// an expiry, deliver it out-of-band, and consume it exactly once.
type AuthService struct {
	Users  repository.UserRepository
	Tokens repository.PasswordResetTokenRepository
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger

	ResetURL    string
	TokenTTL    time.Duration
	MailEnabled bool
}

func NewAuthService(users repository.UserRepository, tokens repository.PasswordResetTokenRepository, pub *helpers.RabbitPublisher, logger *logrus.Logger, resetURL string, ttl time.Duration, mailEnabled bool) *AuthService {
	return &AuthService{
		Users:       users,
		Tokens:      tokens,
		Pub:         pub,
		Logger:      logger,
		ResetURL:    resetURL,
		TokenTTL:    ttl,
		MailEnabled: mailEnabled,
	}
}

// ForgotPassword issues a reset token for a registered email and enqueues
// the reset email. Unknown emails return nil so the handler can answer
// with the same generic acknowledgment and not leak account existence.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		if err != nil && !errors.Is(err, repository.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).Warn("forgot-password lookup failed")
		}
		return nil
	}

	t := &entity.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(s.TokenTTL),
	}
	if err := s.Tokens.Create(ctx, t); err != nil {
		return err
	}

	if s.Pub != nil && s.MailEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplatePasswordReset,
			Data: map[string]any{
				"Name":      u.Name,
				"ResetURL":  s.ResetURL + "?token=" + t.Token,
				"ExpiresIn": s.TokenTTL.String(),
			},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to enqueue reset email")
		}
	}
	return nil
}

// ResetPassword consumes a token and updates the password hash. The token
// row is deleted on success so a second attempt always fails; expired
// tokens are rejected (and swept) without changing the password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	t, err := s.Tokens.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if t.Expired(time.Now()) {
		_ = s.Tokens.Delete(ctx, t.Token)
		return ErrResetTokenInvalid
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, t.UserID, hash); err != nil {
		return err
	}
	if err := s.Tokens.Delete(ctx, t.Token); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", t.UserID).Warn("failed to delete consumed reset token")
	}
	return nil
}
