package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	open atomic.Int64
}

func (o *countingObserver) ConnectionOpened() { o.open.Add(1) }
func (o *countingObserver) ConnectionClosed() { o.open.Add(-1) }

func startHub(t *testing.T) (*Hub, *countingObserver, string) {
	t.Helper()
	obs := &countingObserver{}
	hub := NewHub(obs)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(r.URL.Query().Get("user"), conn)
	}))
	t.Cleanup(srv.Close)

	return hub, obs, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url, user string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user="+user, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub, obs, url := startHub(t)
	first := dial(t, url, "u1")
	second := dial(t, url, "u1")
	other := dial(t, url, "u2")

	require.Eventually(t, func() bool { return hub.Connections("u1") == 2 }, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Connections("u2") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), obs.open.Load())

	hub.SendToUser("u1", NewEvent(EventNewMessage, "chat-1", map[string]string{"content": "hi"}))

	for _, conn := range []*websocket.Conn{first, second} {
		var got Event
		conn.SetReadDeadline(time.Now().Add(time.Second))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, EventNewMessage, got.Type)
		assert.Equal(t, "chat-1", got.ChatID)
		assert.NotEmpty(t, got.Timestamp)
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestPingGetsPong(t *testing.T) {
	_, _, url := startHub(t)
	conn := dial(t, url, "u1")

	require.NoError(t, conn.WriteJSON(Event{Type: EventPing, ChatID: "c"}))

	var got Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventPong, got.Type)
	assert.Equal(t, "c", got.ChatID)
}

func TestUnknownInboundGetsError(t *testing.T) {
	_, _, url := startHub(t)
	conn := dial(t, url, "u1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var got Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventError, got.Type)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub, obs, url := startHub(t)
	conn := dial(t, url, "u1")
	require.Eventually(t, func() bool { return hub.Connections("u1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.Connections("u1") == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), obs.open.Load())
}

func TestSendAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for i := 0; i < 1000; i++ {
		hub.SendToUser("u1", NewEvent(EventNotification, "", nil))
	}
	assert.Equal(t, 0, hub.Connections("u1"))
}
