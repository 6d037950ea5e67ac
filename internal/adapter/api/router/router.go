package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"planmarket/internal/adapter/api/middleware"
)

// Deps carries what the route tables need besides the handlers registered by
// handler.Setup.
type Deps struct {
	Auth    *middleware.AuthMiddleware
	Roles   *middleware.RoleMiddleware
	Limiter middleware.Limiter
	Health  echo.HandlerFunc
	Metrics http.Handler
}

func Setup(e *echo.Echo, deps Deps) {
	SetupHealthRouter(e, deps.Health, deps.Metrics)

	v1 := e.Group("/v1")
	if deps.Limiter != nil {
		v1.Use(middleware.RateLimit(deps.Limiter))
	}

	SetupAuthRouter(v1, deps.Auth)
	SetupProductRouter(v1, deps.Auth, deps.Roles)
	SetupOrderRouter(v1, deps.Auth)
	SetupReviewRouter(v1, deps.Auth)
	SetupProfileRouter(v1, deps.Auth)
	SetupChatRouter(v1, deps.Auth)
	SetupWebSocketRouter(v1, deps.Auth)
	SetupNotificationRouter(v1, deps.Auth)
	SetupAdminRouter(v1, deps.Auth, deps.Roles)
}
