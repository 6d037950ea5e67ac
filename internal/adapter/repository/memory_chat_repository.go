package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/pkg/errors"
)

type memoryChatRepository struct {
	mu       sync.RWMutex
	chats    map[string]entity.Chat
	messages map[string][]entity.Message
}

func NewMemoryChatRepository() repository.ChatRepository {
	return &memoryChatRepository{
		chats:    make(map[string]entity.Chat),
		messages: make(map[string][]entity.Message),
	}
}

func (r *memoryChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.chats {
		if c.BuyerID == chat.BuyerID && c.SellerID == chat.SellerID && c.ProductID == chat.ProductID {
			return errors.Conflict("Chat already exists")
		}
	}
	if chat.ID == "" {
		chat.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.chats[chat.ID] = *chat
	return nil
}

func (r *memoryChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return &c, nil
}

func (r *memoryChatRepository) FindByParticipants(ctx context.Context, buyerID, sellerID, productID string) (*entity.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.chats {
		if c.BuyerID == buyerID && c.SellerID == sellerID && c.ProductID == productID {
			c := c
			return &c, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *memoryChatRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Chat
	for _, c := range r.chats {
		if c.HasParticipant(userID) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return paginate(out, limit, offset), int64(len(out)), nil
}

func (r *memoryChatRepository) Touch(ctx context.Context, chatID, lastMessage string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessage = lastMessage
	c.UpdatedAt = at
	r.chats[chatID] = c
	return nil
}

func (r *memoryChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[message.ChatID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}
	r.messages[message.ChatID] = append(r.messages[message.ChatID], *message)
	return nil
}

func (r *memoryChatRepository) ListMessages(ctx context.Context, chatID string, since time.Time, limit int) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Message
	for _, m := range r.messages[chatID] {
		if !since.IsZero() && !m.SentAt.After(since) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.Before(out[j].SentAt) })
	if out == nil {
		out = []*entity.Message{}
	}
	return paginate(out, limit, 0), nil
}

func (r *memoryChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	msgs := r.messages[chatID]
	for i := range msgs {
		if msgs[i].SenderID != readerID && !msgs[i].Read {
			msgs[i].Read = true
			n++
		}
	}
	return n, nil
}
