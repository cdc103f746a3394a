package repository

import (
	"context"
	"time"

	"libris/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrResetTokenNotFound is returned when a reset token is not found.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository defines the operations for password-reset tokens.
type ResetTokenRepository interface {
	// Create persists a new reset token.
	Create(ctx context.Context, token *entity.ResetToken) error

	// FindByID retrieves a reset token regardless of its consumption state.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ResetToken, error)

	// Consume sets consumedAt with a single conditional update covering both
	// expiry and prior consumption, so two racing resets cannot both succeed.
	// Returns true when this call consumed the token; false when it was
	// already consumed or expired. ErrResetTokenNotFound when absent.
	Consume(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// DeleteByAccountID removes all reset tokens for an account. Used by
	// account deletion.
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpiredBefore removes consumed or expired tokens older than the
	// cutoff; returns the number removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
