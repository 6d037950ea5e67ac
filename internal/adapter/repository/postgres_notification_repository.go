package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.UserID, n.Type, n.Title, n.Body, n.Read, n.CreatedAt)
	if err != nil {
		return errors.Internal("Failed to create notification", err)
	}
	return nil
}

func (r *postgresNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND (NOT $2 OR NOT read)
	`, userID, unreadOnly).Scan(&total)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count notifications", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, body, read, created_at FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT read)
		ORDER BY created_at DESC, id LIMIT $3 OFFSET $4
	`, userID, unreadOnly, limitArg(limit), offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list notifications", err)
	}
	defer rows.Close()

	items := []*entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, 0, errors.Internal("Failed to parse notification data", err)
		}
		items = append(items, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Internal("Failed to iterate notifications", err)
	}
	return items, total, nil
}

func (r *postgresNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read
	`, userID).Scan(&n)
	if err != nil {
		return 0, errors.Internal("Failed to count unread notifications", err)
	}
	return n, nil
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return errors.Internal("Failed to mark notification read", err)
	}
	return expectOneRow(result, "Notification")
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read
	`, userID)
	if err != nil {
		return 0, errors.Internal("Failed to mark notifications read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Internal("Failed to read affected rows", err)
	}
	return n, nil
}
