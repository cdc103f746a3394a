// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"libris/internal/delivery/http/middleware"
	"libris/internal/delivery/http/response"
	"libris/internal/domain/entity"
	"libris/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for credential and session-opening endpoints.
type AuthHandler struct {
	accountUC usecase.AccountUsecase
	resetUC   usecase.ResetUsecase
	logger    *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(accountUC usecase.AccountUsecase, resetUC usecase.ResetUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accountUC: accountUC,
		resetUC:   resetUC,
		logger:    logger,
	}
}

type registerRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Department string `json:"department" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required,uuid"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// accountView is the account shape returned to clients. The credential hash
// never leaves the server.
type accountView struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Status     string    `json:"status"`
}

// Register handles self-service signup; the new account is always a student.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.accountUC.Register(c.Request().Context(), usecase.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAccountView(output.Account), "Account registered successfully")
}

// Login verifies credentials and returns a bearer token bound to a fresh session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.accountUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token":     output.AccessToken,
		"sessionId": output.SessionID,
		"account":   toAccountView(output.Account),
	}, "Login successful")
}

// Logout revokes the session behind the presented token.
func (h *AuthHandler) Logout(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	sessionID, sok := middleware.CurrentSessionID(c)
	if !ok || !sok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.accountUC.Logout(c.Request().Context(), accountID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// ForgotPassword issues a reset token. The response never reveals whether the
// email is registered.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset request input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.resetUC.RequestReset(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "If the email is registered, a reset link has been sent")
}

// ResetPassword consumes a reset token and installs the new credential.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	tokenID, err := uuid.Parse(req.Token)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid reset token format")
	}

	if err := h.resetUC.ConfirmReset(c.Request().Context(), tokenID, req.NewPassword); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password has been reset")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}

func toAccountView(account *entity.Account) *accountView {
	if account == nil {
		return nil
	}

	return &accountView{
		ID:         account.ID,
		Email:      account.Email,
		Name:       account.Name,
		Role:       account.Role.String(),
		Department: account.Department,
		Status:     string(account.Status),
	}
}
