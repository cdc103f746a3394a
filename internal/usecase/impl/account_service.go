// Package impl contains the implementation of the application's business logic.
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
	infraauth "libris/internal/infra/auth"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:    params.TxManager,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a student account through self-service signup.
func (srv *accountService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	return srv.createAccount(ctx, usecase.ProvisionInput{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Role:       entity.RoleStudent,
		Department: input.Department,
		Status:     entity.StatusActive,
	})
}

// Provision creates an account with an administrator-chosen role.
func (srv *accountService) Provision(ctx context.Context, input usecase.ProvisionInput) (*usecase.RegisterOutput, error) {
	if !input.Role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown role")
	}
	if input.Status == "" {
		input.Status = entity.StatusActive
	}
	if !input.Status.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("unknown account status")
	}

	return srv.createAccount(ctx, input)
}

func (srv *accountService) createAccount(ctx context.Context, input usecase.ProvisionInput) (*usecase.RegisterOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	srv.log(ctx).Info("Starting registration", slog.Any("role", input.Role), slog.String("email", email))

	if err := srv.hasher.ValidateStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	newAccount := &entity.Account{
		Email:        email,
		Name:         input.Name,
		Role:         input.Role,
		Department:   input.Department,
		Status:       input.Status,
		PasswordHash: hashedPassword,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccountRepo().Create(ctx, newAccount); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return domainerrors.ErrDuplicateEmail.WrapMessage("email already registered")
			}

			return errors.Wrap(err, "failed to create account")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("role", newAccount.Role), slog.Any("accountID", newAccount.ID))

	return &usecase.RegisterOutput{Account: newAccount}, nil
}

// Login verifies credentials, opens a session and mints a bearer token bound
// to it. Unknown email and wrong password are indistinguishable to the caller,
// in timing as well as in response.
func (srv *accountService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	srv.log(ctx).Debug("Login attempt", slog.String("email", email))

	var output *usecase.LoginOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := repoFactory.AccountRepo().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				// Burn a hash comparison so this path costs the same as a
				// wrong password against a real account.
				infraauth.CheckDummy(srv.hasher, input.Password)

				return domainerrors.ErrInvalidCredentials
			}

			return errors.Wrap(err, "failed to find account by email")
		}

		if !srv.hasher.Check(input.Password, account.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}

		// Status is checked only after the password proved ownership, so the
		// disabled state is disclosed to the owner alone.
		if account.Status != entity.StatusActive {
			return domainerrors.ErrAccountDisabled
		}

		now := time.Now()
		session := &entity.Session{
			AccountID:      account.ID,
			Device:         entity.NewDeviceInfo(input.UserAgent, input.IPAddress),
			LastActivityAt: now,
		}
		if err := repoFactory.SessionRepo().Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to create session")
		}

		accessToken, err := srv.tokenService.Mint(account.ID, account.Role, session.ID)
		if err != nil {
			return errors.Wrap(err, "failed to mint access token")
		}

		output = &usecase.LoginOutput{
			AccessToken: accessToken,
			SessionID:   session.ID,
			Account:     account,
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			srv.log(ctx).Error("Login failed", slog.String("email", email), slog.Any("error", err))
		}

		return nil, err
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("accountID", output.Account.ID), slog.Any("sessionID", output.SessionID))

	return output, nil
}

// Logout revokes the session carried by the current token. A session that is
// already revoked or gone makes logout a no-op, not an error.
func (srv *accountService) Logout(ctx context.Context, accountID, sessionID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return nil
			}

			return errors.Wrap(err, "failed to find session")
		}
		if session.AccountID != accountID {
			return domainerrors.ErrForbidden.WrapMessage("session does not belong to account")
		}

		if _, err := sessionRepo.Revoke(ctx, sessionID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Logout failed", slog.Any("accountID", accountID), slog.Any("sessionID", sessionID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Logout completed", slog.Any("accountID", accountID), slog.Any("sessionID", sessionID))

	return nil
}

// GetProfile returns the account owning the current session.
func (srv *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	var account *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AccountRepo().FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}

			return errors.Wrap(err, "failed to find account")
		}
		account = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// UpdateProfile applies partial profile changes. Role and status are not
// reachable from here; those move only through administrative operations.
func (srv *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input usecase.UpdateProfileInput) (*entity.Account, error) {
	var account *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		found, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}

			return errors.Wrap(err, "failed to find account")
		}

		if input.Name != nil {
			found.Name = *input.Name
		}
		if input.Email != nil {
			found.Email = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		if input.Department != nil {
			found.Department = *input.Department
		}
		if input.Preferences != nil {
			found.Preferences = *input.Preferences
		}
		if input.AvatarRef != nil {
			found.AvatarRef = *input.AvatarRef
		}

		if err := accountRepo.Update(ctx, found); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return domainerrors.ErrDuplicateEmail.WrapMessage("email already registered")
			}

			return errors.Wrap(err, "failed to update account")
		}
		account = found

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update profile", slog.Any("accountID", accountID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("accountID", accountID))

	return account, nil
}

// ChangePassword rotates the credential after verifying the current one, then
// signs out every other device so stolen sessions die with the old password.
func (srv *accountService) ChangePassword(ctx context.Context, accountID, currentSessionID uuid.UUID, input usecase.ChangePasswordInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accountRepo := repoFactory.AccountRepo()

		account, err := accountRepo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}

			return errors.Wrap(err, "failed to find account")
		}

		if !srv.hasher.Check(input.CurrentPassword, account.PasswordHash) {
			return domainerrors.ErrInvalidCredentials
		}
		if input.CurrentPassword == input.NewPassword {
			return domainerrors.ErrSamePassword
		}
		if err := srv.hasher.ValidateStrength(input.NewPassword); err != nil {
			return err
		}

		newHash, err := srv.hasher.Hash(input.NewPassword)
		if err != nil {
			return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
		}

		if err := accountRepo.UpdatePasswordHash(ctx, accountID, newHash); err != nil {
			return errors.Wrap(err, "failed to store new password hash")
		}

		if err := repoFactory.SessionRepo().RevokeAllExcept(ctx, accountID, currentSessionID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to revoke other sessions")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password change failed", slog.Any("accountID", accountID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Password changed", slog.Any("accountID", accountID))

	return nil
}

// DeleteAccount soft-deletes the account and revokes everything it owns in a
// single transaction.
func (srv *accountService) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.AccountRepo().Delete(ctx, accountID); err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrAccountNotFound
			}

			return errors.Wrap(err, "failed to delete account")
		}

		if err := repoFactory.SessionRepo().RevokeAllByAccountID(ctx, accountID, time.Now()); err != nil {
			return errors.Wrap(err, "failed to revoke account sessions")
		}

		if err := repoFactory.ResetTokenRepo().DeleteByAccountID(ctx, accountID); err != nil {
			return errors.Wrap(err, "failed to delete account reset tokens")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete account", slog.Any("accountID", accountID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Account deleted", slog.Any("accountID", accountID))

	return nil
}
