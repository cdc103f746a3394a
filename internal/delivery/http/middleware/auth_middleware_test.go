package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"libris/config"
	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/service"
	infraauth "libris/internal/infra/auth"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessionUsecase answers Authorize with a canned result; nothing else is
// reachable from the middleware.
type stubSessionUsecase struct {
	authorizeErr error

	gotAccountID uuid.UUID
	gotSessionID uuid.UUID
}

func (s *stubSessionUsecase) Authorize(_ context.Context, accountID, sessionID uuid.UUID) error {
	s.gotAccountID = accountID
	s.gotSessionID = sessionID

	return s.authorizeErr
}

func (s *stubSessionUsecase) ListSessions(context.Context, uuid.UUID, uuid.UUID) ([]*usecase.SessionView, error) {
	panic("not used by middleware")
}

func (s *stubSessionUsecase) Heartbeat(context.Context, uuid.UUID, uuid.UUID) error {
	panic("not used by middleware")
}

func (s *stubSessionUsecase) RevokeSession(context.Context, uuid.UUID, uuid.UUID, bool) error {
	panic("not used by middleware")
}

func (s *stubSessionUsecase) RevokeAllOtherSessions(context.Context, uuid.UUID, uuid.UUID) error {
	panic("not used by middleware")
}

func (s *stubSessionUsecase) CleanupInactiveSessions(context.Context) (int64, error) {
	panic("not used by middleware")
}

func newTestTokenService(t *testing.T) service.TokenService {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "test-secret"
	cfg.Env.ServiceName = "libris"

	tokenSvc, err := infraauth.NewJWTService(cfg)
	require.NoError(t, err)

	return tokenSvc
}

func invokeAuthenticate(m *AuthMiddleware, authHeader string) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	handler := m.Authenticate(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	return c, handler(c)
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	tokenSvc := newTestTokenService(t)
	sessionUC := &stubSessionUsecase{}
	m := NewAuthMiddleware(tokenSvc, sessionUC)

	accountID := uuid.New()
	sessionID := uuid.New()
	tokenString, err := tokenSvc.Mint(accountID, entity.RoleLibrarian, sessionID)
	require.NoError(t, err)

	c, err := invokeAuthenticate(m, "Bearer "+tokenString)
	require.NoError(t, err)

	// The registry was asked about exactly this token's session.
	assert.Equal(t, accountID, sessionUC.gotAccountID)
	assert.Equal(t, sessionID, sessionUC.gotSessionID)

	gotAccount, ok := CurrentAccountID(c)
	require.True(t, ok)
	assert.Equal(t, accountID, gotAccount)

	gotSession, ok := CurrentSessionID(c)
	require.True(t, ok)
	assert.Equal(t, sessionID, gotSession)

	gotRole, ok := CurrentRole(c)
	require.True(t, ok)
	assert.Equal(t, entity.RoleLibrarian, gotRole)
}

func TestAuthMiddleware_Authenticate_Rejections(t *testing.T) {
	tokenSvc := newTestTokenService(t)

	validToken, err := tokenSvc.Mint(uuid.New(), entity.RoleStudent, uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name         string
		authHeader   string
		authorizeErr error
	}{
		{
			name:       "missing header",
			authHeader: "",
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic dXNlcjpwYXNz",
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-token",
		},
		{
			name:         "signature valid but session revoked",
			authHeader:   "Bearer " + validToken,
			authorizeErr: domainerrors.ErrUnauthenticated,
		},
		{
			name:         "registry unavailable fails closed",
			authHeader:   "Bearer " + validToken,
			authorizeErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(tokenSvc, &stubSessionUsecase{authorizeErr: tt.authorizeErr})

			_, err := invokeAuthenticate(m, tt.authHeader)
			assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
		})
	}
}

func TestAuthMiddleware_RequireRoles(t *testing.T) {
	m := NewAuthMiddleware(newTestTokenService(t), &stubSessionUsecase{})

	invoke := func(role any, allowed ...entity.Role) error {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if role != nil {
			c.Set(ContextKeyRole, role)
		}

		handler := m.RequireRoles(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		return handler(c)
	}

	t.Run("listed role passes", func(t *testing.T) {
		assert.NoError(t, invoke(entity.RoleLibrarian, entity.RoleAdmin, entity.RoleLibrarian))
	})

	t.Run("unlisted role is forbidden", func(t *testing.T) {
		// No hierarchy: admin is not implicitly allowed on a librarian route.
		err := invoke(entity.RoleAdmin, entity.RoleLibrarian)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("missing role is forbidden", func(t *testing.T) {
		err := invoke(nil, entity.RoleAdmin)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})
}
