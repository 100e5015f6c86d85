package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/fretline/buildtrack-api/internal/domain/entity"
)

// PasswordResetTokenRepository defines the interface for password reset
// token data operations
type PasswordResetTokenRepository interface {
	Create(ctx context.Context, token *entity.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*entity.PasswordResetToken, error)
	MarkAsUsed(ctx context.Context, token string) error
	DeleteByEmail(ctx context.Context, email string) error
}

// InviteTokenRepository defines the interface for invite token data
// operations
type InviteTokenRepository interface {
	Create(ctx context.Context, token *entity.InviteToken) error
	GetByToken(ctx context.Context, token string) (*entity.InviteToken, error)
	MarkAsUsed(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
