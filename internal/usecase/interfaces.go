package usecase

import (
	"context"
	"time"

	ws "planmarket/internal/infrastructure/websocket"
)

// AuthProvider is the identity backend. SignIn and Refresh return
// (uid, idToken, refreshToken).
type AuthProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyToken(ctx context.Context, token string) (string, error)
	RevokeTokens(ctx context.Context, uid string) error
	SignIn(ctx context.Context, email, password string) (string, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, string, error)
}

// Pusher delivers realtime events to a user's open connections.
type Pusher interface {
	SendToUser(userID string, event ws.Event)
}

// RateLimiter gates per-user actions.
type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

func offsetFor(page, limit int) int {
	offset := (page - 1) * limit
	if offset < 0 {
		return 0
	}
	return offset
}
