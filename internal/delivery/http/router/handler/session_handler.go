package handler

import (
	"log/slog"
	"net/http"
	"time"

	"libris/internal/delivery/http/middleware"
	"libris/internal/delivery/http/response"
	"libris/internal/domain/entity"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionHandler holds dependencies for session registry endpoints.
type SessionHandler struct {
	sessionUC usecase.SessionUsecase
	logger    *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(sessionUC usecase.SessionUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUC: sessionUC,
		logger:    logger,
	}
}

type sessionView struct {
	ID             uuid.UUID `json:"id"`
	Browser        string    `json:"browser"`
	OS             string    `json:"os"`
	DeviceClass    string    `json:"deviceClass"`
	IPAddress      string    `json:"ipAddress"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	IsCurrent      bool      `json:"isCurrent"`
}

// ListSessions returns the caller's live sessions, current one flagged.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	sessionID, sok := middleware.CurrentSessionID(c)
	if !ok || !sok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	sessions, err := h.sessionUC.ListSessions(c.Request().Context(), accountID, sessionID)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*sessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, toSessionView(s))
	}

	return response.Success(c, http.StatusOK, views, "Sessions retrieved successfully")
}

// Heartbeat advances the caller's session activity. Authentication already
// touched the session, so reaching this handler is the whole job.
func (h *SessionHandler) Heartbeat(c echo.Context) error {
	return response.Success(c, http.StatusOK, nil, "Session is alive")
}

// RevokeSession signs out one of the caller's own sessions.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid session ID")
	}

	role, _ := middleware.CurrentRole(c)
	asAdmin := role == entity.RoleAdmin

	if err := h.sessionUC.RevokeSession(c.Request().Context(), accountID, sessionID, asAdmin); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Session revoked")
}

// RevokeOtherSessions signs out every device except the caller's current one.
func (h *SessionHandler) RevokeOtherSessions(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	sessionID, sok := middleware.CurrentSessionID(c)
	if !ok || !sok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.sessionUC.RevokeAllOtherSessions(c.Request().Context(), accountID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Other sessions revoked")
}

func toSessionView(s *usecase.SessionView) *sessionView {
	return &sessionView{
		ID:             s.ID,
		Browser:        s.Device.Browser,
		OS:             s.Device.OS,
		DeviceClass:    s.Device.DeviceClass,
		IPAddress:      s.Device.IPAddress,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		IsCurrent:      s.IsCurrent,
	}
}
