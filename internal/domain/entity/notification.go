package entity

import "time"

const (
	NotificationOrderCreated  = "order_created"
	NotificationOrderStatus   = "order_status"
	NotificationReviewCreated = "review_created"
	NotificationNewMessage    = "new_message"
)

type Notification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Type      string    `json:"type" firestore:"type"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body" firestore:"body"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
