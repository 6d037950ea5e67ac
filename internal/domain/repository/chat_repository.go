package repository

import (
	"context"
	"time"

	"planmarket/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	FindByParticipants(ctx context.Context, buyerID, sellerID, productID string) (*entity.Chat, error)
	// ListByUser returns chats where userID is buyer or seller, most recently
	// updated first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	Touch(ctx context.Context, chatID, lastMessage string, at time.Time) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	// ListMessages returns messages sent strictly after since, oldest first.
	ListMessages(ctx context.Context, chatID string, since time.Time, limit int) ([]*entity.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error)
}
