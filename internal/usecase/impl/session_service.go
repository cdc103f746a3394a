package impl

import (
	"context"
	"log/slog"
	"time"

	"libris/config"
	deliverycontext "libris/internal/delivery/context"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/repository"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	defaultSessionIdleTTL = 30 * 24 * time.Hour
	defaultSessionMaxAge  = 90 * 24 * time.Hour
	defaultSessionRetain  = 30 * 24 * time.Hour
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager repository.TransactionManager
	idleTTL   time.Duration
	maxAge    time.Duration
	retainFor time.Duration
	logger    *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Config    *config.Config
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	idleTTL := defaultSessionIdleTTL
	maxAge := defaultSessionMaxAge
	if params.Config != nil && params.Config.Auth != nil {
		if params.Config.Auth.SessionIdleTTL > 0 {
			idleTTL = params.Config.Auth.SessionIdleTTL
		}
		if params.Config.Auth.SessionMaxAge > 0 {
			maxAge = params.Config.Auth.SessionMaxAge
		}
	}

	retainFor := defaultSessionRetain
	if params.Config != nil && params.Config.Janitor != nil && params.Config.Janitor.RetainFor > 0 {
		retainFor = params.Config.Janitor.RetainFor
	}

	return &sessionService{
		txManager: params.TxManager,
		idleTTL:   idleTTL,
		maxAge:    maxAge,
		retainFor: retainFor,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListSessions retrieves the account's non-revoked sessions, most recently
// active first.
func (srv *sessionService) ListSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) ([]*usecase.SessionView, error) {
	var views []*usecase.SessionView

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessions, err := repoFactory.SessionRepo().FindByAccountID(ctx, accountID)
		if err != nil {
			return errors.Wrap(err, "failed to list sessions")
		}

		now := time.Now()
		for _, session := range sessions {
			if !session.Alive(now, srv.idleTTL, srv.maxAge) {
				continue
			}
			views = append(views, &usecase.SessionView{
				ID:             session.ID,
				Device:         session.Device,
				CreatedAt:      session.CreatedAt,
				LastActivityAt: session.LastActivityAt,
				IsCurrent:      session.ID == currentSessionID,
			})
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list sessions", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, err
	}

	return views, nil
}

// Authorize decides whether the given session may still act for the given
// account, advancing its last activity on success. Every failure collapses to
// ErrUnauthenticated; a bearer token without a live session is simply invalid.
func (srv *sessionService) Authorize(ctx context.Context, accountID, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrUnauthenticated
			}

			return errors.Wrap(err, "failed to find session")
		}

		if session.AccountID != accountID {
			return domainerrors.ErrUnauthenticated
		}

		now := time.Now()
		if !session.Alive(now, srv.idleTTL, srv.maxAge) {
			return domainerrors.ErrUnauthenticated
		}

		if err := sessionRepo.Touch(ctx, sessionID, now); err != nil {
			return errors.Wrap(err, "failed to touch session")
		}

		return nil
	})
	if err != nil && !errors.Is(err, domainerrors.ErrUnauthenticated) {
		srv.log(ctx).Error("Session authorization errored", slog.Any("sessionID", sessionID), slog.Any("error", err))
	}

	return err
}

// Heartbeat advances the session's last activity. It shares the Authorize
// checks so a revoked or expired session cannot keep itself warm.
func (srv *sessionService) Heartbeat(ctx context.Context, accountID, sessionID uuid.UUID) error {
	return srv.Authorize(ctx, accountID, sessionID)
}

// RevokeSession revokes one session. Owners may revoke their own sessions,
// including the current one; asAdmin bypasses the ownership check.
func (srv *sessionService) RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID, asAdmin bool) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrSessionNotFound
			}

			return errors.Wrap(err, "failed to find session")
		}

		if !asAdmin && session.AccountID != accountID {
			return domainerrors.ErrForbidden.WrapMessage("session does not belong to account")
		}

		// Already revoked is a no-op; revocation is idempotent.
		if _, err := sessionRepo.Revoke(ctx, sessionID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Failed to revoke session", slog.Any("sessionID", sessionID), slog.Bool("asAdmin", asAdmin), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Session revoked", slog.Any("sessionID", sessionID), slog.Bool("asAdmin", asAdmin))

	return nil
}

// RevokeAllOtherSessions signs out every device except the current one.
func (srv *sessionService) RevokeAllOtherSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.SessionRepo().RevokeAllExcept(ctx, accountID, currentSessionID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to revoke other sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke other sessions", slog.Any("accountID", accountID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Other sessions revoked", slog.Any("accountID", accountID), slog.Any("keptSessionID", currentSessionID))

	return nil
}

// CleanupInactiveSessions purges rows that stopped authorizing before the
// retention window. Revoked and idle-expired rows both qualify.
func (srv *sessionService) CleanupInactiveSessions(ctx context.Context) (int64, error) {
	var removed int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cutoff := time.Now().Add(-srv.retainFor)
		if srv.idleTTL > 0 {
			// A session idle past its TTL stopped authorizing idleTTL after its
			// last activity, so the purge cutoff moves back by that much too.
			cutoff = cutoff.Add(-srv.idleTTL)
		}

		count, err := repoFactory.SessionRepo().DeleteInactiveBefore(ctx, cutoff)
		if err != nil {
			return errors.Wrap(err, "failed to purge sessions")
		}
		removed = count

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to cleanup sessions", slog.Any("error", err))

		return 0, err
	}

	if removed > 0 {
		srv.log(ctx).Info("Purged inactive sessions", slog.Int64("removed", removed))
	}

	return removed, nil
}
