package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]HealthCheck
		status int
		body   string
	}{
		{
			name:   "no dependencies",
			status: http.StatusOK,
			body:   `"status":"ok"`,
		},
		{
			name: "store reachable",
			checks: map[string]HealthCheck{
				"postgres": func(ctx context.Context) error { return nil },
			},
			status: http.StatusOK,
			body:   `"postgres":"ok"`,
		},
		{
			name: "store down",
			checks: map[string]HealthCheck{
				"postgres": func(ctx context.Context) error { return fmt.Errorf("connection refused") },
			},
			status: http.StatusServiceUnavailable,
			body:   `"status":"degraded"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

			require.NoError(t, NewHealthHandler(tt.checks).CheckHealth(c))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}
