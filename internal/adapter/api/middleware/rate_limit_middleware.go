package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"planmarket/internal/infrastructure/ratelimit"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
	"planmarket/pkg/response"
)

// Limiter consumes one token for key under action.
type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit throttles requests per client IP.
func RateLimit(limiter Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ok, wait := limiter.Allow(ip, ratelimit.ActionHTTP); !ok {
				logger.WithFields(map[string]interface{}{
					"ip":          ip,
					"path":        c.Path(),
					"retry_after": wait.String(),
				}).Warn("Rate limit exceeded")
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded", wait))
			}
			return next(c)
		}
	}
}
