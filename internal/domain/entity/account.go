// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	// StatusActive indicates a fully usable account.
	StatusActive AccountStatus = "active"
	// StatusSuspended indicates an account blocked by an administrator.
	StatusSuspended AccountStatus = "suspended"
	// StatusPending indicates an account awaiting activation.
	StatusPending AccountStatus = "pending"
)

// IsValid checks if the AccountStatus is a valid value.
func (s AccountStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPending:
		return true
	default:
		return false
	}
}

// Account is the core identity record of the catalog. It owns the credential
// hash; the plaintext password never leaves the hasher.
type Account struct {
	ID           uuid.UUID     // Unique identifier for the account.
	Email        string        // Login identifier, unique, stored lower-cased.
	Name         string        // Display name.
	Role         Role          // The account's single role within the catalog.
	Department   string        // Optional department or faculty.
	Status       AccountStatus // Lifecycle state, mutated by admin actions.
	PasswordHash string        // Output of the PasswordHasher, never plaintext.
	Preferences  string        // Opaque JSON blob owned by the UI layer.
	AvatarRef    string        // Opaque reference to a profile picture, owned by the upload subsystem.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
