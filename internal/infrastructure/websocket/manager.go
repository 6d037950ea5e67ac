package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"planmarket/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// ConnectionObserver is told about connections coming and going.
type ConnectionObserver interface {
	ConnectionOpened()
	ConnectionClosed()
}

// Client is one WebSocket connection. A user may hold several.
type Client struct {
	hub    *Hub
	UserID string
	conn   *websocket.Conn
	send   chan []byte
}

type delivery struct {
	userID  string
	payload []byte
}

type directDelivery struct {
	client  *Client
	payload []byte
}

type countQuery struct {
	userID string
	reply  chan int
}

// Hub routes events to connected users. The client registry is owned by the
// Run goroutine and only touched through channels.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	direct     chan directDelivery
	count      chan countQuery
	done       chan struct{}
	observer   ConnectionObserver
}

func NewHub(observer ConnectionObserver) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		direct:     make(chan directDelivery, 64),
		count:      make(chan countQuery),
		done:       make(chan struct{}),
		observer:   observer,
	}
}

// Run processes hub traffic until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			if h.observer != nil {
				h.observer.ConnectionOpened()
			}
			logger.Debug("ws client registered: %s (%d open)", client.UserID, len(set))

		case client := <-h.unregister:
			h.remove(client)

		case d := <-h.deliver:
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.payload:
				default:
					// Slow consumer, drop the connection rather than block the hub.
					h.remove(client)
				}
			}

		case d := <-h.direct:
			if _, ok := h.clients[d.client.UserID][d.client]; !ok {
				continue
			}
			select {
			case d.client.send <- d.payload:
			default:
				h.remove(d.client)
			}

		case q := <-h.count:
			q.reply <- len(h.clients[q.userID])

		case <-ctx.Done():
			for _, set := range h.clients {
				for client := range set {
					h.remove(client)
				}
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)
	if h.observer != nil {
		h.observer.ConnectionClosed()
	}
	logger.Debug("ws client unregistered: %s", client.UserID)
}

// SendToUser queues an event for every connection of userID. It never blocks
// once the hub has stopped.
func (h *Hub) SendToUser(userID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("ws marshal %s event: %v", event.Type, err)
		return
	}
	select {
	case h.deliver <- delivery{userID: userID, payload: payload}:
	case <-h.done:
	}
}

// Connections reports how many open connections userID has.
func (h *Hub) Connections(userID string) int {
	q := countQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.count <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

// Attach registers conn for userID and starts its pumps.
func (h *Hub) Attach(userID string, conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return client
	}

	go client.writePump()
	go client.readPump()
	return client
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws read from %s: %v", c.UserID, err)
			}
			return
		}

		if reply, ok := handleInbound(raw); ok {
			c.reply(reply)
		}
	}
}

// reply queues an event for this connection only. The hub performs the send
// so it never races with the channel being closed.
func (c *Client) reply(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.hub.direct <- directDelivery{client: c, payload: payload}:
	case <-c.hub.done:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("ws write to %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
