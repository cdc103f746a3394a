package repository

import (
	"context"
	"time"

	"libris/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when a session is not found.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the operations of the session registry.
// This supports multi-device login and remote logout functionality.
type SessionRepository interface {
	// Create persists a new session, opened exactly once per successful login.
	Create(ctx context.Context, session *entity.Session) error

	// FindByID retrieves a session record by its unique ID, revoked or not.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindByAccountID retrieves all non-revoked sessions for an account,
	// ordered by last activity descending.
	FindByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error)

	// Touch advances lastActivityAt. Idempotent, last writer wins.
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error

	// Revoke sets revokedAt with a single conditional update so two racing
	// revocations cannot both transition the row. Returns true when this call
	// performed the transition, false when the session was already revoked.
	// ErrSessionNotFound when no such session exists.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RevokeAllExcept bulk-revokes every other non-revoked session owned by
	// the account ("sign out all other devices").
	RevokeAllExcept(ctx context.Context, accountID, keep uuid.UUID, at time.Time) error

	// RevokeAllByAccountID revokes every session of the account. Used by
	// password reset and account deletion.
	RevokeAllByAccountID(ctx context.Context, accountID uuid.UUID, at time.Time) error

	// DeleteInactiveBefore removes revoked or idle-expired rows older than the
	// cutoff. Called periodically for cleanup; returns the number removed.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
