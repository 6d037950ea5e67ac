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

const (
	chatColumns    = `id, buyer_id, seller_id, product_id, last_message, created_at, updated_at`
	messageColumns = `id, chat_id, sender_id, content, message_type, read, sent_at`
)

type postgresChatRepository struct {
	db *sql.DB
}

func NewPostgresChatRepository(db *sql.DB) repository.ChatRepository {
	return &postgresChatRepository{db: db}
}

func scanChat(row rowScanner) (*entity.Chat, error) {
	var c entity.Chat
	if err := row.Scan(&c.ID, &c.BuyerID, &c.SellerID, &c.ProductID, &c.LastMessage, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (`+chatColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, chat.ID, chat.BuyerID, chat.SellerID, chat.ProductID, chat.LastMessage, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("Chat already exists")
		}
		return errors.Internal("Failed to create chat", err)
	}
	return nil
}

func (r *postgresChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	c, err := scanChat(r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Chat", "Failed to get chat")
	}
	return c, nil
}

func (r *postgresChatRepository) FindByParticipants(ctx context.Context, buyerID, sellerID, productID string) (*entity.Chat, error) {
	c, err := scanChat(r.db.QueryRowContext(ctx, `
		SELECT `+chatColumns+` FROM chats WHERE buyer_id = $1 AND seller_id = $2 AND product_id = $3
	`, buyerID, sellerID, productID))
	if err != nil {
		return nil, notFoundOr(err, "Chat", "Failed to find chat")
	}
	return c, nil
}

func (r *postgresChatRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chats WHERE buyer_id = $1 OR seller_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count chats", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+chatColumns+` FROM chats WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3
	`, userID, limitArg(limit), offset)
	if err != nil {
		return nil, 0, errors.Internal("Failed to list chats", err)
	}
	defer rows.Close()

	chats := []*entity.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, 0, errors.Internal("Failed to parse chat data", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Internal("Failed to iterate chats", err)
	}
	return chats, total, nil
}

func (r *postgresChatRepository) Touch(ctx context.Context, chatID, lastMessage string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE chats SET last_message = $2, updated_at = $3 WHERE id = $1
	`, chatID, lastMessage, at)
	if err != nil {
		return errors.Internal("Failed to update chat", err)
	}
	return expectOneRow(result, "Chat")
}

func (r *postgresChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, message.ID, message.ChatID, message.SenderID, message.Content, message.MessageType, message.Read, message.SentAt)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *postgresChatRepository) ListMessages(ctx context.Context, chatID string, since time.Time, limit int) ([]*entity.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE chat_id = $1 AND sent_at > $2
		ORDER BY sent_at ASC, id LIMIT $3
	`, chatID, since, limitArg(limit))
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	defer rows.Close()

	messages := []*entity.Message{}
	for rows.Next() {
		var m entity.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.MessageType, &m.Read, &m.SentAt); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal("Failed to iterate messages", err)
	}
	return messages, nil
}

func (r *postgresChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read = true WHERE chat_id = $1 AND sender_id <> $2 AND NOT read
	`, chatID, readerID)
	if err != nil {
		return 0, errors.Internal("Failed to mark messages read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Internal("Failed to read affected rows", err)
	}
	return n, nil
}
