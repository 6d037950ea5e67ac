package usecase

import (
	"context"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	ws "planmarket/internal/infrastructure/websocket"
	"planmarket/pkg/logger"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	pusher           Pusher
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, pusher Pusher) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		pusher:           pusher,
	}
}

// Notify stores a notification and pushes it to the user's open sockets.
// It is fire-and-forget: failures are logged and never fail the caller.
func (uc *NotificationUseCase) Notify(ctx context.Context, userID, kind, title, body string) {
	n := &entity.Notification{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
	}
	if err := uc.notificationRepo.Create(ctx, n); err != nil {
		logger.Error("Notify %s for %s: %v", kind, userID, err)
		return
	}
	if uc.pusher != nil {
		uc.pusher.SendToUser(userID, ws.NewEvent(ws.EventNotification, "", n))
	}
}

type NotificationList struct {
	Items       []*entity.Notification
	Total       int64
	UnreadCount int64
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) (*NotificationList, error) {
	items, total, err := uc.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offsetFor(page, limit))
	if err != nil {
		return nil, err
	}
	unread, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Total: total, UnreadCount: unread}, nil
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	return uc.notificationRepo.MarkRead(ctx, id, userID)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}
