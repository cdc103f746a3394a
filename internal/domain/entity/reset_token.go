package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResetToken is a single-use, time-limited credential authorizing exactly one
// password change. It is decoupled from login tokens: possessing one does not
// open a session.
type ResetToken struct {
	ID         uuid.UUID  // Unguessable token identifier, delivered out of band by email.
	AccountID  uuid.UUID  // The account whose password may be changed.
	ExpiresAt  time.Time  // Hard expiry; expired tokens are rejected regardless of consumption state.
	ConsumedAt *time.Time // Set atomically with the password change that used the token.
	CreatedAt  time.Time
}

// Consumed reports whether the token has already authorized a password change.
func (t *ResetToken) Consumed() bool {
	return t.ConsumedAt != nil
}

// Usable reports whether the token may still authorize a password change at
// the given instant.
func (t *ResetToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
