// Package middleware contains the HTTP middleware guarding protected routes.
package middleware

import (
	"strings"

	"libris/internal/domain/entity"
	domainerrors "libris/internal/domain/errors"
	"libris/internal/domain/service"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyAccountID = "accountID"
	ContextKeyRole      = "role"
	ContextKeySessionID = "sessionID"
)

// AuthMiddleware authenticates bearer tokens and enforces role requirements.
// A token is accepted only when its signature verifies AND the session it is
// bound to still authorizes requests; either check failing yields the same 401.
type AuthMiddleware struct {
	tokenSvc  service.TokenService
	sessionUC usecase.SessionUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, sessionUC usecase.SessionUsecase) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, sessionUC: sessionUC}
}

// Authenticate validates the bearer token and resolves its session against the
// registry. It fails closed: when the registry cannot answer, the request is
// rejected rather than admitted on signature alone.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return domainerrors.ErrUnauthenticated.WrapMessage("authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return domainerrors.ErrUnauthenticated.WrapMessage("authorization header must carry a bearer token")
		}

		claims, err := m.tokenSvc.Validate(tokenString)
		if err != nil {
			return domainerrors.ErrUnauthenticated.WrapMessage("invalid or expired token")
		}

		// The signature only proves the token was once issued. The session
		// registry decides whether it still means anything.
		if err := m.sessionUC.Authorize(c.Request().Context(), claims.AccountID, claims.SessionID); err != nil {
			return domainerrors.ErrUnauthenticated.WrapMessage("session no longer valid")
		}

		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeySessionID, claims.SessionID)

		return next(c)
	}
}

// RequireRoles is a middleware factory that admits only the listed roles.
// There is no role hierarchy; a route open to several roles lists them all.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRoles(allowed ...entity.Role) echo.MiddlewareFunc {
	allowedSet := entity.Roles(allowed)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(ContextKeyRole).(entity.Role)
			if !ok {
				return domainerrors.ErrForbidden.WrapMessage("role information missing")
			}

			if !allowedSet.Contains(role) {
				return domainerrors.ErrForbidden.WrapMessage("role not permitted on this route")
			}

			return next(c)
		}
	}
}

// CurrentAccountID returns the authenticated account ID set by Authenticate.
func CurrentAccountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyAccountID).(uuid.UUID)

	return id, ok
}

// CurrentSessionID returns the session ID carried by the current token.
func CurrentSessionID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeySessionID).(uuid.UUID)

	return id, ok
}

// CurrentRole returns the authenticated role set by Authenticate.
func CurrentRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(ContextKeyRole).(entity.Role)

	return role, ok
}
