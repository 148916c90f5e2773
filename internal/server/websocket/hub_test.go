package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub, cancel
}

// fakeClient registers a client without a connection; tests read its
// send channel directly.
func fakeClient(hub *Hub) *Client {
	return &Client{id: "fake", hub: hub, send: make(chan Message, 4)}
}

func TestHub_BroadcastToRegistered(t *testing.T) {
	hub, _ := newTestHub(t)

	client := fakeClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(Message{Type: "sync.status", Data: "syncing"})

	select {
	case msg := <-client.send:
		assert.Equal(t, "sync.status", msg.Type)
		assert.Equal(t, "syncing", msg.Data)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	hub, _ := newTestHub(t)

	client := &Client{id: "slow", hub: hub, send: make(chan Message)}
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(Message{Type: "article.added"})
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel := newTestHub(t)

	client := fakeClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_EndToEnd(t *testing.T) {
	hub, _ := newTestHub(t)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast(Message{Type: "article.removed", Data: map[string]any{"identity": "row-2"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "article.removed", msg.Type)
	assert.Equal(t, map[string]any{"identity": "row-2"}, msg.Data)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewClient_UniqueIDs(t *testing.T) {
	logger := zerolog.Nop()
	hub := NewHub(&logger)
	a, b := NewClient(hub, nil), NewClient(hub, nil)
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
