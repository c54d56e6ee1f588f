package repository

import (
	"context"

	"github.com/meublog/blog-api/internal/domain/entity"
)

// PasswordResetTokenRepository persists single-use reset tokens.
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, t *entity.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
}
