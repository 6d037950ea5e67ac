package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memrepo "planmarket/internal/adapter/repository"
	"planmarket/internal/domain/entity"
	"planmarket/internal/infrastructure/ratelimit"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if uid, ok := v[token]; ok {
		return uid, nil
	}
	return "", fmt.Errorf("unknown token")
}

func echoUID(c echo.Context) error {
	return c.String(http.StatusOK, UserID(c))
}

func serve(e *echo.Echo, target string, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(staticVerifier{"good": "u1"})
	e := echo.New()
	e.GET("/me", echoUID, auth.Authenticate)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "u1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, "/me", tt.header)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestOptionalAndQueryToken(t *testing.T) {
	auth := NewAuthMiddleware(staticVerifier{"good": "u1"})
	e := echo.New()
	e.GET("/open", echoUID, auth.Optional)
	e.GET("/ws", echoUID, auth.QueryToken)

	assert.Equal(t, "", serve(e, "/open", "").Body.String())
	assert.Equal(t, "", serve(e, "/open", "Bearer bad").Body.String())
	assert.Equal(t, "u1", serve(e, "/open", "Bearer good").Body.String())

	assert.Equal(t, "u1", serve(e, "/ws?token=good", "").Body.String())
	assert.Equal(t, "u1", serve(e, "/ws", "Bearer good").Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(e, "/ws", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, "/ws?token=bad", "").Code)
}

func TestRoleMiddleware(t *testing.T) {
	repos := memrepo.NewMemoryRepositories()
	ctx := context.Background()
	require.NoError(t, repos.Profiles.Create(ctx, &entity.Profile{ID: "root", Role: entity.RoleAdmin}))
	require.NoError(t, repos.Profiles.Create(ctx, &entity.Profile{ID: "s1", Role: entity.RoleSeller}))

	auth := NewAuthMiddleware(staticVerifier{"admin": "root", "seller": "s1", "ghost": "nobody"})
	roles := NewRoleMiddleware(repos.Profiles)
	e := echo.New()
	e.GET("/admin", echoUID, auth.Authenticate, roles.AdminOnly)
	e.GET("/sell", echoUID, auth.Authenticate, roles.SellerOnly)

	assert.Equal(t, http.StatusOK, serve(e, "/admin", "Bearer admin").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, "/admin", "Bearer seller").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, "/admin", "Bearer ghost").Code)
	assert.Equal(t, http.StatusOK, serve(e, "/sell", "Bearer seller").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, "/sell", "Bearer admin").Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(ratelimit.Per(2, time.Minute))
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RateLimit(limiter))

	assert.Equal(t, http.StatusNoContent, serve(e, "/ping", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(e, "/ping", "").Code)

	rec := serve(e, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "TOO_MANY_REQUESTS")
}
