// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"libris/config"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/service"
)

// dummyHash is a bcrypt hash of a random string nobody knows. Login runs a
// compare against it when the email is unknown, so the unknown-email and
// wrong-password paths cost the same.
const dummyHash = "$2a$12$K7ZB3Uy0sq5cOYyv1HqEHOKI4KxUZJEhVcTsqBjkU0qO7d0mJQhXG"

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost     int
	strength config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Auth.BcryptCost
	}

	strength := config.PasswordStrengthConfig{
		MinLength: 6,
		MaxLength: 72, // bcrypt input ceiling
	}
	if cfg.PasswordStrength != nil {
		strength = *cfg.PasswordStrength
		if strength.MinLength <= 0 {
			strength.MinLength = 6
		}
		if strength.MaxLength <= 0 || strength.MaxLength > 72 {
			strength.MaxLength = 72
		}
	}

	return &bcryptHasher{
		cost:     cost,
		strength: strength,
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// CheckDummy burns one bcrypt comparison without verifying anything real.
func CheckDummy(hasher service.PasswordHasher, password string) {
	hasher.Check(password, dummyHash)
}

// ValidateStrength checks a candidate password against the configured policy.
func (h *bcryptHasher) ValidateStrength(password string) error {
	if len(password) < h.strength.MinLength {
		return domainerrors.ErrWeakPassword.WrapMessage("password too short")
	}
	if len(password) > h.strength.MaxLength {
		return domainerrors.ErrWeakPassword.WrapMessage("password too long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if h.strength.RequireUppercase && !hasUpper {
		return domainerrors.ErrWeakPassword.WrapMessage("password needs an uppercase letter")
	}
	if h.strength.RequireLowercase && !hasLower {
		return domainerrors.ErrWeakPassword.WrapMessage("password needs a lowercase letter")
	}
	if h.strength.RequireNumbers && !hasDigit {
		return domainerrors.ErrWeakPassword.WrapMessage("password needs a digit")
	}
	if h.strength.RequireSpecial && !hasSpecial {
		return domainerrors.ErrWeakPassword.WrapMessage("password needs a special character")
	}

	return nil
}
