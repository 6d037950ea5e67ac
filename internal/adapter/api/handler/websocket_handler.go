package handler

import (
	"net/http"
	"net/url"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "planmarket/internal/infrastructure/websocket"
	"planmarket/pkg/logger"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins. "*" allows any
// origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if _, ok := origins["*"]; ok {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := origins[origin]; ok {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// HandleWebSocket upgrades the request. The hub owns the connection afterwards.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := c.Get("uid").(string)

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn("WebSocket upgrade failed for user %s: %v", userID, err)
		return nil
	}

	h.hub.Attach(userID, conn)
	logger.Debug("WebSocket connected for user %s", userID)
	return nil
}
