package websocket

import (
	"encoding/json"
	"time"
)

const (
	EventNewMessage   = "new_message"
	EventChatUpdate   = "chat_update"
	EventNotification = "notification"
	EventPing         = "ping"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is the frame exchanged with clients in both directions.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	ChatID    string      `json:"chat_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorData struct {
	Message string `json:"message"`
}

func NewEvent(eventType, chatID string, data interface{}) Event {
	return Event{
		Type:      eventType,
		Data:      data,
		ChatID:    chatID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// handleInbound answers a client frame. Messages are sent over HTTP, so the
// socket only understands application-level pings; anything else gets an
// error event back.
func handleInbound(raw []byte) (Event, bool) {
	var in Event
	if err := json.Unmarshal(raw, &in); err != nil {
		return NewEvent(EventError, "", ErrorData{Message: "invalid message format"}), true
	}

	switch in.Type {
	case EventPing:
		return NewEvent(EventPong, in.ChatID, nil), true
	case EventPong:
		return Event{}, false
	default:
		return NewEvent(EventError, in.ChatID, ErrorData{Message: "unsupported event type: " + in.Type}), true
	}
}
