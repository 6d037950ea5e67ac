package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupAuthRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authMiddleware.Authenticate)
	auth.GET("/profile", authHandler.Profile, authMiddleware.Authenticate)
}
