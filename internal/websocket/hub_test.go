package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, establishment string) *Client {
	return &Client{Hub: hub, Send: make(chan []byte, 4), Establishment: establishment}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHub_PublishFiltersByEstablishment(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	all := newTestClient(hub, "")
	cafe := newTestClient(hub, "Cafe X")
	other := newTestClient(hub, "Other")
	hub.Register(all)
	hub.Register(cafe)
	hub.Register(other)
	waitForClients(t, hub, 3)

	hub.Publish("rating_created", "Cafe X", map[string]interface{}{"id": 1})

	for _, c := range []*Client{all, cafe} {
		select {
		case raw := <-c.Send:
			var event Event
			require.NoError(t, json.Unmarshal(raw, &event))
			assert.Equal(t, "rating_created", event.Type)
			assert.Equal(t, "Cafe X", event.Establishment)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("filtered client received event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	c := newTestClient(hub, "")
	hub.Register(c)
	waitForClients(t, hub, 1)

	hub.Unregister(c)
	waitForClients(t, hub, 0)

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestClient_WritePumpDeliversEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, "")
		hub.Register(client)
		go client.WritePump()
		client.ReadPump()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForClients(t, hub, 1)
	hub.Publish("rating_deleted", "Cafe X", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "rating_deleted", event.Type)
}
