package ws

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

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func dialTestClient(t *testing.T, hub *Hub) (*Client, *websocket.Conn, func()) {
	t.Helper()

	registered := make(chan *Client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := &Client{Conn: conn}
		hub.Register(client)
		registered <- client
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	client := <-registered
	return client, conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	client, _, teardown := dialTestClient(t, hub)
	defer teardown()

	assert.Equal(t, 1, hub.ConnectionCount())

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_JoinLeave(t *testing.T) {
	hub := NewHub()
	client, _, teardown := dialTestClient(t, hub)
	defer teardown()

	hub.Join(client, "job-1")
	hub.Join(client, "job-2")
	assert.Equal(t, 1, hub.RoomSize("job-1"))
	assert.Equal(t, 1, hub.RoomSize("job-2"))

	hub.Leave(client, "job-1")
	assert.Equal(t, 0, hub.RoomSize("job-1"))
	assert.Equal(t, 1, hub.RoomSize("job-2"))
}

func TestHub_SendToRoom(t *testing.T) {
	hub := NewHub()
	client, conn, teardown := dialTestClient(t, hub)
	defer teardown()

	hub.Join(client, "job-1")

	err := hub.SendToRoom("job-1", map[string]string{"type": "provider_start", "job_id": "job-1"})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]string
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "provider_start", msg["type"])
	assert.Equal(t, "job-1", msg["job_id"])
}

func TestHub_SendToRoom_NotJoined(t *testing.T) {
	hub := NewHub()
	client, conn, teardown := dialTestClient(t, hub)
	defer teardown()

	hub.Join(client, "job-1")

	// Message for a different room is not delivered
	require.NoError(t, hub.SendToRoom("job-2", map[string]string{"type": "provider_start"}))

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterLeavesRooms(t *testing.T) {
	hub := NewHub()
	client, _, teardown := dialTestClient(t, hub)
	defer teardown()

	hub.Join(client, "job-1")
	hub.Unregister(client)

	assert.Equal(t, 0, hub.RoomSize("job-1"))
	require.NoError(t, hub.SendToRoom("job-1", Message{Type: "noop"}))
}
