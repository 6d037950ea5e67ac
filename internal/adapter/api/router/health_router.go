package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func SetupHealthRouter(e *echo.Echo, health echo.HandlerFunc, metrics http.Handler) {
	if health != nil {
		e.GET("/health", health)
	}
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}
}
