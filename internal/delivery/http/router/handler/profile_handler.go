package handler

import (
	"log/slog"
	"net/http"

	"libris/internal/delivery/http/middleware"
	"libris/internal/delivery/http/response"
	"libris/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler holds dependencies for account self-management endpoints.
type ProfileHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(accountUC usecase.AccountUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		accountUC: accountUC,
		logger:    logger,
	}
}

type updateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Department  *string `json:"department" validate:"omitempty,max=100"`
	Preferences *string `json:"preferences"`
	AvatarRef   *string `json:"avatarRef" validate:"omitempty,max=255"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// GetProfile returns the authenticated account.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	account, err := h.accountUC.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountView(account), "Profile retrieved successfully")
}

// UpdateProfile applies partial changes to the authenticated account.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	account, err := h.accountUC.UpdateProfile(c.Request().Context(), accountID, usecase.UpdateProfileInput{
		Name:        req.Name,
		Email:       req.Email,
		Department:  req.Department,
		Preferences: req.Preferences,
		AvatarRef:   req.AvatarRef,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountView(account), "Profile updated successfully")
}

// ChangePassword rotates the credential of the authenticated account and
// signs out every other device.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	sessionID, sok := middleware.CurrentSessionID(c)
	if !ok || !sok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err := h.accountUC.ChangePassword(c.Request().Context(), accountID, sessionID, usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed successfully")
}

// DeleteAccount soft-deletes the authenticated account.
func (h *ProfileHandler) DeleteAccount(c echo.Context) error {
	accountID, ok := middleware.CurrentAccountID(c)
	if !ok {
		return response.Unauthorized(c, "UNAUTHENTICATED", "Authentication required")
	}

	if err := h.accountUC.DeleteAccount(c.Request().Context(), accountID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Account deleted")
}
