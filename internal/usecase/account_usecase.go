// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"libris/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required for self-service registration.
// Self-registered accounts always start as students.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department string
}

// ProvisionInput defines the data an administrator supplies when creating an
// account with an explicit role.
type ProvisionInput struct {
	Name       string
	Email      string
	Password   string
	Role       entity.Role
	Department string
	Status     entity.AccountStatus
}

// LoginInput defines the data required to open a session.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// UpdateProfileInput defines the mutable profile fields. Nil pointers leave
// the stored value untouched. A new email must still be unique.
type UpdateProfileInput struct {
	Name        *string
	Email       *string
	Department  *string
	Preferences *string
	AvatarRef   *string
}

// ChangePasswordInput defines the data required to rotate a credential while
// logged in.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	Account *entity.Account
}

// LoginOutput returns the bearer token and the session it is bound to.
type LoginOutput struct {
	AccessToken string
	SessionID   uuid.UUID
	Account     *entity.Account
}

// AccountUsecase defines the interface for account-related business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	// Register creates a student account through self-service signup.
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)

	// Provision creates an account with an administrator-chosen role.
	Provision(ctx context.Context, input ProvisionInput) (*RegisterOutput, error)

	// Login verifies credentials, opens a session and mints a bearer token.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Logout revokes the session carried by the current token. Revoking an
	// already revoked session is not an error.
	Logout(ctx context.Context, accountID, sessionID uuid.UUID) error

	// GetProfile returns the account owning the current session.
	GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)

	// UpdateProfile applies partial profile changes.
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input UpdateProfileInput) (*entity.Account, error)

	// ChangePassword rotates the credential after verifying the current one,
	// then signs out every other device.
	ChangePassword(ctx context.Context, accountID, currentSessionID uuid.UUID, input ChangePasswordInput) error

	// DeleteAccount soft-deletes the account and revokes everything it owns.
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error
}
