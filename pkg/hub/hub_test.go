package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial opens a client/server websocket pair backed by httptest.
func dial(t *testing.T, h *Hub, userID uint) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		h.Register(userID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishReachesOnlyTheUser(t *testing.T) {
	h := New()
	alice := dial(t, h, 1)
	bob := dial(t, h, 2)

	h.Publish(1, "notification", map[string]string{"title": "hi"})

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := alice.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(frame, &ev))
	assert.Equal(t, "notification", ev.Name)

	// Bob's channel stays silent.
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestPublishToOfflineUserIsANoop(t *testing.T) {
	h := New()
	// Nothing to assert beyond "does not panic or block".
	h.Publish(42, "notification", "payload")
	assert.Equal(t, 0, h.ConnCount(42))
}

func TestPublishFromManyGoroutines(t *testing.T) {
	h := New()
	client := dial(t, h, 1)

	// Drain the client side so the server never blocks on a full buffer.
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h.Publish(1, "notification", map[string]int{"seq": g*200 + i})
			}
		}(g)
	}
	wg.Wait()

	// Every write succeeded; the connection was never dropped.
	assert.Equal(t, 1, h.ConnCount(1))
}

func TestUnregisterDropsConnection(t *testing.T) {
	h := New()
	_ = dial(t, h, 7)
	assert.Equal(t, 1, h.ConnCount(7))

	h.mu.RLock()
	var conn *websocket.Conn
	for c := range h.conns[7] {
		conn = c
	}
	h.mu.RUnlock()

	h.Unregister(7, conn)
	assert.Equal(t, 0, h.ConnCount(7))
}
