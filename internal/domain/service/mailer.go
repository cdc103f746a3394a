package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Mailer is the outbound port to the email collaborator. Delivery itself is
// out of scope; the reset flow only needs the dispatch to be fire-and-forget
// from the caller's point of view.
type Mailer interface {
	// SendPasswordReset dispatches a reset token to the given address.
	SendPasswordReset(ctx context.Context, email string, tokenID uuid.UUID, expiresAt time.Time) error
}
