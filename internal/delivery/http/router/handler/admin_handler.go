package handler

import (
	"log/slog"
	"net/http"

	"libris/internal/delivery/http/middleware"
	"libris/internal/delivery/http/response"
	"libris/internal/domain/entity"
	"libris/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler holds dependencies for administrative endpoints.
type AdminHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(accountUC usecase.AccountUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		accountUC: accountUC,
		logger:    logger,
	}
}

type provisionRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	Role       string `json:"role" validate:"required"`
	Department string `json:"department" validate:"max=100"`
	Status     string `json:"status"`
}

// ProvisionAccount creates an account with an explicit role, for staff onboarding.
func (h *AdminHandler) ProvisionAccount(c echo.Context) error {
	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.accountUC.Provision(c.Request().Context(), usecase.ProvisionInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       entity.Role(req.Role),
		Department: req.Department,
		Status:     entity.AccountStatus(req.Status),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAccountView(output.Account), "Account provisioned successfully")
}

// AdminDashboard is the landing endpoint of the administrative area.
func (h *AdminHandler) AdminDashboard(c echo.Context) error {
	role, _ := middleware.CurrentRole(c)

	return response.Success(c, http.StatusOK, map[string]string{"area": "admin", "role": role.String()}, "Welcome")
}

// LibrarianDashboard is the landing endpoint of the circulation desk area.
func (h *AdminHandler) LibrarianDashboard(c echo.Context) error {
	role, _ := middleware.CurrentRole(c)

	return response.Success(c, http.StatusOK, map[string]string{"area": "librarian", "role": role.String()}, "Welcome")
}

// StudentDashboard is the landing endpoint of the catalog area open to all roles.
func (h *AdminHandler) StudentDashboard(c echo.Context) error {
	role, _ := middleware.CurrentRole(c)

	return response.Success(c, http.StatusOK, map[string]string{"area": "student", "role": role.String()}, "Welcome")
}
