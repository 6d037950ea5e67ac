package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type memoryNotificationRepository struct {
	mu    sync.RWMutex
	items []entity.Notification
}

func NewMemoryNotificationRepository() repository.NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, &n)
	}
	return paginate(out, limit, offset), int64(len(out)), nil
}

func (r *memoryNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, n := range r.items {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return errors.NotFound("Notification", nil)
}

func (r *memoryNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}
