package router

import (
	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/handler"
	"planmarket/internal/adapter/api/middleware"
)

func SetupOrderRouter(v1 *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	orderHandler := handler.GetOrderHandler()

	orders := v1.Group("", authMiddleware.Authenticate)
	orders.GET("/orders", orderHandler.ListOrders)
	orders.POST("/orders", orderHandler.CreateOrder)
	orders.GET("/order-:id", orderHandler.GetOrder)
	orders.PUT("/order-:id", orderHandler.UpdateStatus)
	orders.GET("/sales", orderHandler.ListSales)
	orders.GET("/stats", orderHandler.Stats)
}
