// Package mail provides the outbound email adapter.
package mail

import (
	"context"
	"log/slog"
	"time"

	"libris/internal/domain/service"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// Params defines the parameters required for the mailer
type Params struct {
	fx.In

	Logger *slog.Logger
}

// slogMailer records outbound mail to the structured log instead of an SMTP
// relay. The delivery channel is owned by a separate system; this adapter
// keeps the reset flow observable until that integration lands.
type slogMailer struct {
	logger *slog.Logger
}

// NewSlogMailer is the constructor for slogMailer.
func NewSlogMailer(params Params) service.Mailer {
	return &slogMailer{logger: params.Logger}
}

// SendPasswordReset logs the reset dispatch. The token ID is the opaque handle
// the account owner presents back to the reset endpoint.
func (m *slogMailer) SendPasswordReset(ctx context.Context, email string, tokenID uuid.UUID, expiresAt time.Time) error {
	m.logger.LogAttrs(ctx, slog.LevelInfo, "password reset dispatched",
		slog.String("email", email),
		slog.String("tokenID", tokenID.String()),
		slog.Time("expiresAt", expiresAt),
	)

	return nil
}
