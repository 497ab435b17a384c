// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"savoro/internal/delivery/http/middleware"
	"savoro/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AddressHandler *handler.AddressHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	addressHandler *handler.AddressHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		userHandler:    params.UserHandler,
		addressHandler: params.AddressHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes, no token required
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.POST("/refresh-token", r.authHandler.Refresh)
		authGroup.POST("/forgot-password", r.authHandler.ForgotPassword)
		authGroup.POST("/reset-password/:token", r.authHandler.ResetPassword)
		authGroup.POST("/send-otp", r.authHandler.SendOTP)
		authGroup.POST("/verify-otp", r.authHandler.VerifyOTP)
		authGroup.GET("/verify-email/:token", r.authHandler.VerifyEmail)
		authGroup.POST("/resend-email-verification", r.authHandler.ResendEmailVerification)
	}

	// User routes that require authentication
	userGroup := e.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.userHandler.GetProfile)
		userGroup.PUT("/profile", r.userHandler.UpdateProfile)
		userGroup.GET("/sessions", r.userHandler.ListSessions)
		userGroup.DELETE("/sessions/:id", r.userHandler.RevokeSession)
		userGroup.DELETE("/sessions", r.userHandler.RevokeAllSessions)
	}

	// Address-book routes that require authentication
	addressGroup := e.Group("/addresses")
	addressGroup.Use(r.authMiddleware.Authenticate)
	{
		addressGroup.POST("", r.addressHandler.Create)
		addressGroup.GET("", r.addressHandler.List)
		addressGroup.GET("/:id", r.addressHandler.Get)
		addressGroup.PUT("/:id", r.addressHandler.Update)
		addressGroup.DELETE("/:id", r.addressHandler.Delete)
		addressGroup.PUT("/:id/default", r.addressHandler.SetDefault)
	}
}
