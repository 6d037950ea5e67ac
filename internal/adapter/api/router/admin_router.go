package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupAdminRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := v1.Group("/admin", authMiddleware.Authenticate, roleMiddleware.AdminOnly)
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/orders", adminHandler.Orders)
	admin.GET("/sellers/top", adminHandler.TopSellers)
}
