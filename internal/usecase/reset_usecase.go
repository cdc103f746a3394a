package usecase

import (
	"context"

	"github.com/google/uuid"
)

// ResetUsecase defines the interface for the password reset flow.
type ResetUsecase interface {
	// RequestReset issues a reset token and hands it to the mailer. It returns
	// nil for unknown addresses so the endpoint cannot be used to probe which
	// emails are registered.
	RequestReset(ctx context.Context, email string) error

	// ConfirmReset consumes the token, installs the new credential and signs
	// the account out everywhere, all in one transaction.
	ConfirmReset(ctx context.Context, tokenID uuid.UUID, newPassword string) error

	// CleanupExpiredTokens purges consumed or expired tokens older than the
	// retention window; returns the number removed.
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}
