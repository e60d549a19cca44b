package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, kind)
	return string(data)
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub, srv, _ := startHub(t)
	a := dial(t, srv)
	b := dial(t, srv)

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 5*time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte(`{"tick":1}`))
	hub.Broadcast([]byte(`{"tick":2}`))

	for _, conn := range []*websocket.Conn{a, b} {
		assert.Equal(t, `{"tick":1}`, readText(t, conn))
		assert.Equal(t, `{"tick":2}`, readText(t, conn))
	}
}

func TestHub_ResetRequest(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeReset}))

	select {
	case <-hub.Resets():
	case <-time.After(5 * time.Second):
		t.Fatal("reset request not delivered")
	}
}

func TestHub_IgnoresUnknownMessages(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "jump"}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeReset}))

	select {
	case <-hub.Resets():
	case <-time.After(5 * time.Second):
		t.Fatal("reset request not delivered")
	}
	assert.Equal(t, 1, hub.Clients())
}

func TestHub_ResetsCoalesce(t *testing.T) {
	hub := NewHub()
	hub.requestReset()
	hub.requestReset()

	assert.Len(t, hub.Resets(), 1)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub, srv, _ := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, srv, cancel := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)

	// Broadcasting after the hub stopped must not block.
	hub.Broadcast([]byte(`{}`))
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 5*time.Second, 5*time.Millisecond)
}
