package service

import (
	"libris/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims defines the custom claims carried by a bearer token. SessionID binds
// the token to one registry entry; revoking that entry kills the token before
// its cryptographic expiry.
type Claims struct {
	AccountID uuid.UUID   `json:"-"`
	Role      entity.Role `json:"role"`
	SessionID uuid.UUID   `json:"sid"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for minting and validating bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Mint creates a signed bearer token for one account on one session.
	Mint(accountID uuid.UUID, role entity.Role, sessionID uuid.UUID) (string, error)

	// Validate checks signature and expiry of a token string. It is a pure
	// function of the token and the signing key; revocation is checked
	// separately against the session registry.
	Validate(tokenString string) (*Claims, error)
}
