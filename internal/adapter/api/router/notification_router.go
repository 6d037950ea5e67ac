package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupNotificationRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	notificationHandler := handler.GetNotificationHandler()

	notifications := v1.Group("", authMiddleware.Authenticate)
	notifications.GET("/notifications", notificationHandler.List)
	notifications.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/notification-:id/read", notificationHandler.MarkRead)
}
