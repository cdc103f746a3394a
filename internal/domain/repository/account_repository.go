// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"libris/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for account persistence.
var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when the email unique constraint is violated.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository defines the standard operations for account persistence.
// Records are mutated only through these methods, never by direct writes.
type AccountRepository interface {
	// Create persists a new account. The email must already be lower-cased.
	Create(ctx context.Context, account *entity.Account) error

	// FindByID retrieves an account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves an account by email. Lookup is case-insensitive.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// Update persists changes to an existing account's profile fields.
	Update(ctx context.Context, account *entity.Account) error

	// UpdatePasswordHash replaces the stored credential hash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error

	// Delete soft-deletes the account. Session and reset-token cascade is the
	// caller's responsibility, inside the same transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}
