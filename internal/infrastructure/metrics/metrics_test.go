package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.OrderCreated()
	m.OrderTransitioned("completed")
	m.ReviewWritten("create")
	m.ProductViewed()
	m.MessageSent()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	out := scrape(t, m)
	assert.Contains(t, out, "planmarket_orders_created_total 1")
	assert.Contains(t, out, `planmarket_orders_transitions_total{to="completed"} 1`)
	assert.Contains(t, out, `planmarket_reviews_events_total{op="create"} 1`)
	assert.Contains(t, out, "planmarket_catalog_product_views_total 1")
	assert.Contains(t, out, "planmarket_chat_messages_total 1")
	assert.Contains(t, out, "planmarket_ws_connections 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderCreated()
		m.OrderTransitioned("canceled")
		m.ReviewWritten("delete")
		m.ProductViewed()
		m.MessageSent()
		m.ConnectionOpened()
		m.ConnectionClosed()
	})
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/product-:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/product-abc", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	out := scrape(t, m)
	assert.Contains(t, out, `planmarket_http_requests_total{method="GET",route="/v1/product-:id",status="204"} 1`)
}
