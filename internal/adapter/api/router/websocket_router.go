package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupWebSocketRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	v1.GET("/ws", handler.GetWebSocketHandler().HandleWebSocket, authMiddleware.QueryToken)
}
