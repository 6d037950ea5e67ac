package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"planmarket/internal/domain/entity"
	"planmarket/internal/domain/repository"
	"planmarket/internal/infrastructure/metrics"
	"planmarket/internal/infrastructure/ratelimit"
	ws "planmarket/internal/infrastructure/websocket"
	"planmarket/pkg/errors"
	"planmarket/pkg/logger"
)

const (
	maxMessageLength = 2000
	previewLength    = 100
	defaultPollLimit = 100
)

type ChatUseCase struct {
	chatRepo      repository.ChatRepository
	productRepo   repository.ProductRepository
	profileRepo   repository.ProfileRepository
	notifications *NotificationUseCase
	pusher        Pusher
	rateLimiter   RateLimiter
	metrics       *metrics.Metrics
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
	notifications *NotificationUseCase,
	pusher Pusher,
	rateLimiter RateLimiter,
	m *metrics.Metrics,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:      chatRepo,
		productRepo:   productRepo,
		profileRepo:   profileRepo,
		notifications: notifications,
		pusher:        pusher,
		rateLimiter:   rateLimiter,
		metrics:       m,
	}
}

// ChatView is a chat as seen by one participant.
type ChatView struct {
	*entity.Chat
	Product   *entity.Product `json:"product,omitempty"`
	OtherUser *entity.Profile `json:"other_user,omitempty"`
}

type CreateChatInput struct {
	ProductID      string
	InitialMessage string
}

// CreateChat opens a chat between the caller and the product's seller, or
// returns the existing one. The bool reports whether a chat was created.
func (uc *ChatUseCase) CreateChat(ctx context.Context, buyerID string, input CreateChatInput) (*ChatView, bool, error) {
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, false, err
	}
	if product.SellerID == buyerID {
		return nil, false, errors.BadRequest("You cannot create a chat with yourself", nil)
	}

	chat, err := uc.chatRepo.FindByParticipants(ctx, buyerID, product.SellerID, product.ID)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, errors.CodeNotFound):
		if allowed, wait := uc.allow(buyerID, ratelimit.ActionCreateChat); !allowed {
			logger.Warn("CreateChat rate limited: user %s must wait %v", buyerID, wait)
			return nil, false, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat", wait)
		}
		chat = &entity.Chat{BuyerID: buyerID, SellerID: product.SellerID, ProductID: product.ID}
		if err := uc.chatRepo.Create(ctx, chat); err != nil {
			if !errors.Is(err, errors.CodeConflict) {
				return nil, false, err
			}
			// Lost a race with a concurrent create for the same tuple.
			if chat, err = uc.chatRepo.FindByParticipants(ctx, buyerID, product.SellerID, product.ID); err != nil {
				return nil, false, err
			}
		} else {
			created = true
		}
	default:
		return nil, false, err
	}

	if strings.TrimSpace(input.InitialMessage) != "" {
		if _, err := uc.sendMessage(ctx, buyerID, chat, input.InitialMessage); err != nil {
			return nil, false, err
		}
	}

	view, err := uc.view(ctx, buyerID, chat, product)
	if err != nil {
		return nil, false, err
	}
	return view, created, nil
}

func (uc *ChatUseCase) ListChats(ctx context.Context, userID string, page, limit int) ([]*ChatView, int64, error) {
	chats, total, err := uc.chatRepo.ListByUser(ctx, userID, limit, offsetFor(page, limit))
	if err != nil {
		return nil, 0, err
	}

	views := make([]*ChatView, 0, len(chats))
	for _, chat := range chats {
		view, err := uc.view(ctx, userID, chat, nil)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, view)
	}
	return views, total, nil
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*ChatView, error) {
	chat, err := uc.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, userID, chat, nil)
}

// Messages returns messages newer than since, oldest first. A zero since
// returns the start of the conversation.
func (uc *ChatUseCase) Messages(ctx context.Context, userID, chatID string, since time.Time, limit int) ([]*entity.Message, error) {
	if _, err := uc.participantChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPollLimit
	}
	return uc.chatRepo.ListMessages(ctx, chatID, since, limit)
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, chatID, content string) (*entity.Message, error) {
	chat, err := uc.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	return uc.sendMessage(ctx, userID, chat, content)
}

func (uc *ChatUseCase) sendMessage(ctx context.Context, senderID string, chat *entity.Chat, content string) (*entity.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return nil, errors.BadRequest("Message is too long", nil)
	}

	if allowed, wait := uc.allow(senderID, ratelimit.ActionSendMessage); !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, wait)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", wait)
	}

	message := &entity.Message{
		ChatID:      chat.ID,
		SenderID:    senderID,
		Content:     content,
		MessageType: entity.MessageTypeText,
		SentAt:      time.Now().UTC(),
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.Touch(ctx, chat.ID, preview(content), message.SentAt); err != nil {
		logger.Error("Touch chat %s: %v", chat.ID, err)
	} else {
		chat.LastMessage = preview(content)
		chat.UpdatedAt = message.SentAt
	}
	uc.metrics.MessageSent()

	event := ws.NewEvent(ws.EventNewMessage, chat.ID, message)
	uc.push(chat.BuyerID, event)
	uc.push(chat.SellerID, event)

	recipient := chat.Counterpart(senderID)
	uc.notifications.Notify(ctx, recipient, entity.NotificationNewMessage, "New message", preview(content))

	return message, nil
}

type ReadReceipt struct {
	ChatID string `json:"chat_id"`
	ReadBy string `json:"read_by"`
	Count  int64  `json:"count"`
}

// MarkRead marks the other participant's messages as read and tells them.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, chatID string) (*ReadReceipt, error) {
	chat, err := uc.participantChat(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	n, err := uc.chatRepo.MarkMessagesRead(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	receipt := &ReadReceipt{ChatID: chatID, ReadBy: userID, Count: n}
	if n > 0 {
		uc.push(chat.Counterpart(userID), ws.NewEvent(ws.EventChatUpdate, chatID, receipt))
	}
	return receipt, nil
}

func (uc *ChatUseCase) participantChat(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}
	return chat, nil
}

func (uc *ChatUseCase) view(ctx context.Context, userID string, chat *entity.Chat, product *entity.Product) (*ChatView, error) {
	view := &ChatView{Chat: chat}

	if product == nil {
		p, err := uc.productRepo.GetByID(ctx, chat.ProductID)
		if err != nil && !errors.Is(err, errors.CodeNotFound) {
			return nil, err
		}
		product = p
	}
	if product != nil {
		product.Files = nil
		view.Product = product
	}

	other, err := uc.profileRepo.GetByID(ctx, chat.Counterpart(userID))
	if err == nil {
		view.OtherUser = other
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}
	return view, nil
}

func (uc *ChatUseCase) allow(userID, action string) (bool, time.Duration) {
	if uc.rateLimiter == nil {
		return true, 0
	}
	return uc.rateLimiter.Allow(userID, action)
}

func (uc *ChatUseCase) push(userID string, event ws.Event) {
	if uc.pusher != nil {
		uc.pusher.SendToUser(userID, event)
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength-3]) + "..."
}
