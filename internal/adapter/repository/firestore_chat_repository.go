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

// chatDoc adds a participants array so a single array-contains query finds
// chats where the user is buyer or seller.
type chatDoc struct {
	entity.Chat
	Participants []string `firestore:"participants"`
}

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{client: client}
}

func (r *firestoreChatRepository) col() *firestore.CollectionRef {
	return r.client.Collection(collectionChats)
}

func (r *firestoreChatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.col().Doc(chatID).Collection(collectionMessages)
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	chat.ID = deterministicID("chat", chat.BuyerID, chat.SellerID, chat.ProductID)
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	doc := &chatDoc{Chat: *chat, Participants: []string{chat.BuyerID, chat.SellerID}}
	if _, err := r.col().Doc(chat.ID).Create(ctx, doc); err != nil {
		if isAlreadyExists(err) {
			return errors.Conflict("Chat already exists")
		}
		return errors.Internal("Failed to create chat", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, fsGetError(err, "Chat", "Failed to get chat")
	}
	var doc chatDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	return &doc.Chat, nil
}

func (r *firestoreChatRepository) FindByParticipants(ctx context.Context, buyerID, sellerID, productID string) (*entity.Chat, error) {
	return r.GetByID(ctx, deterministicID("chat", buyerID, sellerID, productID))
}

func (r *firestoreChatRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.col().Where("participants", "array-contains", userID)
	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count chats", err)
	}

	query = query.OrderBy("updatedAt", firestore.Desc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	docs, err := collect[chatDoc](query.Documents(ctx), "chats")
	if err != nil {
		return nil, 0, err
	}
	chats := make([]*entity.Chat, 0, len(docs))
	for _, d := range docs {
		c := d.Chat
		chats = append(chats, &c)
	}
	return chats, total, nil
}

func (r *firestoreChatRepository) Touch(ctx context.Context, chatID, lastMessage string, at time.Time) error {
	_, err := r.col().Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: lastMessage},
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		return fsGetError(err, "Chat", "Failed to update chat")
	}
	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}
	if _, err := r.messages(message.ChatID).Doc(message.ID).Set(ctx, message); err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, since time.Time, limit int) ([]*entity.Message, error) {
	query := r.messages(chatID).Query
	if !since.IsZero() {
		query = query.Where("sentAt", ">", since)
	}
	query = query.OrderBy("sentAt", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return collect[entity.Message](query.Documents(ctx), "messages")
}

func (r *firestoreChatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID string) (int64, error) {
	iter := r.messages(chatID).Where("read", "==", false).Documents(ctx)
	defer iter.Stop()

	snaps, err := iter.GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to load unread messages", err)
	}

	bw := r.client.BulkWriter(ctx)
	var n int64
	for _, snap := range snaps {
		var m entity.Message
		if err := snap.DataTo(&m); err != nil {
			return n, errors.Internal("Failed to parse message data", err)
		}
		if m.SenderID == readerID {
			continue
		}
		if _, err := bw.Update(snap.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
			return n, errors.Internal("Failed to mark message read", err)
		}
		n++
	}
	bw.End()
	return n, nil
}
