package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"libris/config"
	deliverycontext "libris/internal/delivery/context"
	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/domain/service"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultResetTokenTTL    = time.Hour
	defaultResetTokenRetain = 7 * 24 * time.Hour
)

// resetService implements the ResetUsecase interface.
type resetService struct {
	txManager repository.TransactionManager
	hasher    service.PasswordHasher
	mailer    service.Mailer
	tokenTTL  time.Duration
	retainFor time.Duration
	logger    *slog.Logger
}

// ResetServiceParams holds dependencies for resetService, injected by Fx.
type ResetServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Mailer    service.Mailer
	Config    *config.Config
	Logger    *slog.Logger
}

// NewResetService is the constructor for resetService.
func NewResetService(params ResetServiceParams) usecase.ResetUsecase {
	tokenTTL := defaultResetTokenTTL
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.ResetTokenTTL > 0 {
		tokenTTL = params.Config.Auth.ResetTokenTTL
	}

	retainFor := defaultResetTokenRetain
	if params.Config != nil && params.Config.Janitor != nil && params.Config.Janitor.RetainFor > 0 {
		retainFor = params.Config.Janitor.RetainFor
	}

	return &resetService{
		txManager: params.TxManager,
		hasher:    params.Hasher,
		mailer:    params.Mailer,
		tokenTTL:  tokenTTL,
		retainFor: retainFor,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *resetService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RequestReset issues a reset token and hands it to the mailer. The response
// is identical whether or not the address is registered.
func (srv *resetService) RequestReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var token *entity.ResetToken
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := repoFactory.AccountRepo().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				// Swallow: the caller must not learn whether the email exists.
				return nil
			}

			return errors.Wrap(err, "failed to find account by email")
		}

		token = &entity.ResetToken{
			AccountID: account.ID,
			ExpiresAt: time.Now().Add(srv.tokenTTL),
		}
		if err := repoFactory.ResetTokenRepo().Create(ctx, token); err != nil {
			return errors.Wrap(err, "failed to create reset token")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to request password reset", slog.Any("error", err))

		return err
	}

	if token == nil {
		srv.log(ctx).Debug("Password reset requested for unknown email")

		return nil
	}

	// Mail after commit so an undeliverable message never rolls back the token.
	if err := srv.mailer.SendPasswordReset(ctx, email, token.ID, token.ExpiresAt); err != nil {
		srv.log(ctx).Error("Failed to dispatch reset mail", slog.Any("tokenID", token.ID), slog.Any("error", err))
	}

	return nil
}

// ConfirmReset consumes the token, installs the new credential and signs the
// account out everywhere, all in one transaction.
func (srv *resetService) ConfirmReset(ctx context.Context, tokenID uuid.UUID, newPassword string) error {
	if err := srv.hasher.ValidateStrength(newPassword); err != nil {
		return err
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		resetRepo := repoFactory.ResetTokenRepo()

		token, err := resetRepo.FindByID(ctx, tokenID)
		if err != nil {
			if errors.Is(err, repository.ErrResetTokenNotFound) {
				return domainerrors.ErrInvalidResetToken
			}

			return errors.Wrap(err, "failed to find reset token")
		}

		now := time.Now()
		consumed, err := resetRepo.Consume(ctx, tokenID, now)
		if err != nil {
			return errors.Wrap(err, "failed to consume reset token")
		}
		if !consumed {
			// The first read may predate a concurrent consumption; only the
			// state after the failed transition can tell spent from expired.
			token, err = resetRepo.FindByID(ctx, tokenID)
			if err != nil {
				if errors.Is(err, repository.ErrResetTokenNotFound) {
					return domainerrors.ErrInvalidResetToken
				}

				return errors.Wrap(err, "failed to recheck reset token")
			}
			if token.Consumed() {
				return domainerrors.ErrResetTokenUsed
			}

			return domainerrors.ErrInvalidResetToken
		}

		newHash, err := srv.hasher.Hash(newPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}

		if err := repoFactory.AccountRepo().UpdatePasswordHash(ctx, token.AccountID, newHash); err != nil {
			return errors.Wrap(err, "failed to store new password hash")
		}

		// Every session dies with the old credential, including whichever
		// device an attacker may have been holding.
		if err := repoFactory.SessionRepo().RevokeAllByAccountID(ctx, token.AccountID, now); err != nil {
			return errors.Wrap(err, "failed to revoke account sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset confirmation failed", slog.Any("tokenID", tokenID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("tokenID", tokenID))

	return nil
}

// CleanupExpiredTokens purges consumed or expired tokens older than the
// retention window.
func (srv *resetService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	var removed int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		count, err := repoFactory.ResetTokenRepo().DeleteExpiredBefore(ctx, time.Now().Add(-srv.retainFor))
		if err != nil {
			return errors.Wrap(err, "failed to purge reset tokens")
		}
		removed = count

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to cleanup reset tokens", slog.Any("error", err))

		return 0, err
	}

	if removed > 0 {
		srv.log(ctx).Info("Purged reset tokens", slog.Int64("removed", removed))
	}

	return removed, nil
}
