package usecase

import (
	"context"
	"time"

	"libris/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionView is the representation of a session exposed to its owner.
type SessionView struct {
	ID             uuid.UUID
	Device         entity.DeviceInfo
	CreatedAt      time.Time
	LastActivityAt time.Time
	IsCurrent      bool
}

// SessionUsecase defines the interface for session registry operations.
type SessionUsecase interface {
	// ListSessions returns the account's non-revoked sessions, most recently
	// active first, flagging the one the caller is on.
	ListSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) ([]*SessionView, error)

	// Authorize decides whether the given session may still act for the given
	// account. On success it advances the session's last activity. Any failure
	// means the bearer token must be rejected.
	Authorize(ctx context.Context, accountID, sessionID uuid.UUID) error

	// Heartbeat advances the session's last activity without any other effect.
	Heartbeat(ctx context.Context, accountID, sessionID uuid.UUID) error

	// RevokeSession revokes one session. Owners may revoke their own sessions;
	// asAdmin bypasses the ownership check for administrative remote logout.
	RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID, asAdmin bool) error

	// RevokeAllOtherSessions signs out every device except the current one.
	RevokeAllOtherSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) error

	// CleanupInactiveSessions purges rows that stopped authorizing long enough
	// ago; returns the number removed.
	CleanupInactiveSessions(ctx context.Context) (int64, error)
}
