package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"libris/config"
	domainerrors "libris/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher(strength *config.PasswordStrengthConfig) *bcryptHasher {
	cfg := &config.Config{
		Auth:             &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: strength,
	}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := newTestHasher(nil)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "correct horse")

	assert.True(t, hasher.Check("correct horse battery staple", hash))
	assert.False(t, hasher.Check("wrong password", hash))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := newTestHasher(nil)

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCheckDummy_DoesNotVerifyAnything(t *testing.T) {
	hasher := newTestHasher(nil)

	// Only exercised for its cost; must not panic on arbitrary input.
	CheckDummy(hasher, "whatever was typed")
}

func TestBcryptHasher_ValidateStrength(t *testing.T) {
	strict := &config.PasswordStrengthConfig{
		MinLength:        8,
		MaxLength:        72,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSpecial:   true,
	}

	tests := []struct {
		name     string
		strength *config.PasswordStrengthConfig
		password string
		wantErr  bool
	}{
		{
			name:     "default policy accepts a simple password",
			strength: nil,
			password: "hunter22",
			wantErr:  false,
		},
		{
			name:     "default policy rejects a short password",
			strength: nil,
			password: "abc",
			wantErr:  true,
		},
		{
			name:     "strict policy accepts a compliant password",
			strength: strict,
			password: "Tr0ub4dor&3",
			wantErr:  false,
		},
		{
			name:     "strict policy rejects missing uppercase",
			strength: strict,
			password: "tr0ub4dor&3",
			wantErr:  true,
		},
		{
			name:     "strict policy rejects missing digit",
			strength: strict,
			password: "Troubador&x",
			wantErr:  true,
		},
		{
			name:     "strict policy rejects missing special character",
			strength: strict,
			password: "Tr0ub4dor33",
			wantErr:  true,
		},
		{
			name:     "password beyond the bcrypt ceiling is rejected",
			strength: strict,
			password: "Aa1!" + strings.Repeat("x", 80),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := newTestHasher(tt.strength)

			err := hasher.ValidateStrength(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
