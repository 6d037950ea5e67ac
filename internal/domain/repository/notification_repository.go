package repository

import (
	"context"

	"planmarket/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead returns NotFound when the notification does not belong to userID.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
