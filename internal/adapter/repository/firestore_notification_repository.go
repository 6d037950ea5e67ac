package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{client: client}
}

func (r *firestoreNotificationRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionNotifications)
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now().UTC()
	if _, err := r.col().Doc(n.ID).Set(ctx, n); err != nil {
		return errors.Internal("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) userQuery(userID string, unreadOnly bool) firestore.Query {
	query := r.col().Where("userId", "==", userID)
	if unreadOnly {
		query = query.Where("read", "==", false)
	}
	return query
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, int64, error) {
	query := r.userQuery(userID, unreadOnly)
	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count notifications", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	items, err := collect[entity.Notification](query.Documents(ctx), "notifications")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	n, err := countQuery(ctx, r.userQuery(userID, true))
	if err != nil {
		return 0, errors.Internal("Failed to count unread notifications", err)
	}
	return n, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	ref := r.col().Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return fsGetError(err, "Notification", "Failed to get notification")
		}
		owner, err := snap.DataAt("userId")
		if err != nil || owner != userID {
			return errors.NotFound("Notification", err)
		}
		return tx.Update(ref, []firestore.Update{{Path: "read", Value: true}})
	})
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	iter := r.userQuery(userID, true).Documents(ctx)
	defer iter.Stop()

	snaps, err := iter.GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to load unread notifications", err)
	}
	bw := r.client.BulkWriter(ctx)
	for _, snap := range snaps {
		if _, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return 0, errors.Internal("Failed to mark notification read", err)
		}
	}
	bw.End()
	return int64(len(snaps)), nil
}
