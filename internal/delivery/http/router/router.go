// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"libris/internal/delivery/http/middleware"
	"libris/internal/delivery/http/router/handler"
	"libris/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	SessionHandler *handler.SessionHandler
	AdminHandler   *handler.AdminHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimit      *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	sessionHandler *handler.SessionHandler
	adminHandler   *handler.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		profileHandler: params.ProfileHandler,
		sessionHandler: params.SessionHandler,
		adminHandler:   params.AdminHandler,
		authMiddleware: params.AuthMiddleware,
		rateLimit:      params.RateLimit,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Credential endpoints are rate limited per client IP.
	api.POST("/register", r.authHandler.Register, r.rateLimit.Limit)
	api.POST("/login", r.authHandler.Login, r.rateLimit.Limit)
	api.POST("/forgot-password", r.authHandler.ForgotPassword, r.rateLimit.Limit)
	api.POST("/reset-password", r.authHandler.ResetPassword, r.rateLimit.Limit)

	// Routes below require a valid bearer token backed by a live session.
	authed := api.Group("", r.authMiddleware.Authenticate)
	{
		authed.POST("/logout", r.authHandler.Logout)

		authed.GET("/profile", r.profileHandler.GetProfile)
		authed.PUT("/profile", r.profileHandler.UpdateProfile)
		// PATCH accepted as an alias; the update is partial either way.
		authed.PATCH("/profile", r.profileHandler.UpdateProfile)
		authed.POST("/profile/change-password", r.profileHandler.ChangePassword)
		authed.DELETE("/profile", r.profileHandler.DeleteAccount)

		authed.GET("/sessions", r.sessionHandler.ListSessions)
		authed.POST("/sessions/refresh", r.sessionHandler.Heartbeat)
		authed.DELETE("/sessions/:id", r.sessionHandler.RevokeSession)
		// Bare DELETE on the collection signs out every other device.
		authed.DELETE("/sessions", r.sessionHandler.RevokeOtherSessions)
	}

	// Role-gated areas. There is no hierarchy; each group lists every role it
	// admits explicitly.
	adminGroup := api.Group("/admin", r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRoles(entity.RoleAdmin))
	{
		adminGroup.GET("/dashboard", r.adminHandler.AdminDashboard)
		adminGroup.POST("/accounts", r.adminHandler.ProvisionAccount)
	}

	librarianGroup := api.Group("/librarian", r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleLibrarian))
	{
		librarianGroup.GET("/dashboard", r.adminHandler.LibrarianDashboard)
	}

	studentGroup := api.Group("/student", r.authMiddleware.Authenticate,
		r.authMiddleware.RequireRoles(entity.RoleAdmin, entity.RoleLibrarian, entity.RoleStudent))
	{
		studentGroup.GET("/dashboard", r.adminHandler.StudentDashboard)
	}
}
