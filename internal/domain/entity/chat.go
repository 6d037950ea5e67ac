package entity

import "time"

const MessageTypeText = "text"

// Chat is a conversation between a buyer and a seller about one product.
type Chat struct {
	ID          string    `json:"id" firestore:"id"`
	BuyerID     string    `json:"buyer_id" firestore:"buyerId"`
	SellerID    string    `json:"seller_id" firestore:"sellerId"`
	ProductID   string    `json:"product_id" firestore:"productId"`
	LastMessage string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (c *Chat) HasParticipant(userID string) bool {
	return c.BuyerID == userID || c.SellerID == userID
}

// Counterpart returns the other participant.
func (c *Chat) Counterpart(userID string) string {
	if c.BuyerID == userID {
		return c.SellerID
	}
	return c.BuyerID
}

type Message struct {
	ID          string    `json:"id" firestore:"id"`
	ChatID      string    `json:"chat_id" firestore:"chatId"`
	SenderID    string    `json:"sender_id" firestore:"senderId"`
	Content     string    `json:"content" firestore:"content"`
	MessageType string    `json:"message_type" firestore:"messageType"`
	Read        bool      `json:"read" firestore:"read"`
	SentAt      time.Time `json:"sent_at" firestore:"sentAt"`
}
