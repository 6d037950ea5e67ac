package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"planmarket/pkg/errors"
	"planmarket/pkg/response"
)

// TokenVerifier resolves an ID token to a user ID.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// Optional sets uid when a valid token is present and never rejects.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if token, err := bearerToken(c); err == nil {
			if uid, err := m.verifier.VerifyToken(c.Request().Context(), token); err == nil {
				c.Set("uid", uid)
			}
		}
		return next(c)
	}
}

// QueryToken authenticates with the token query parameter, for clients that
// cannot set headers on a WebSocket upgrade. A bearer header is also accepted.
func (m *AuthMiddleware) QueryToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			var err error
			if token, err = bearerToken(c); err != nil {
				return response.Error(c, errors.Unauthorized("Token is required", nil))
			}
		}

		uid, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set("uid", uid)
		return next(c)
	}
}

// UserID returns the authenticated user, or "" on public routes.
func UserID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
