// Package hub fans state-change events out to the websocket connections
// of a single user. Delivery is best-effort: a user with no open
// connection simply misses the live event and re-syncs from the
// persisted notifications.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/propline/bidboard/pkg/logutils"
)

const writeTimeout = 10 * time.Second

// Event is the wire frame pushed to clients.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// client serializes writes to one connection. gorilla/websocket allows
// at most one concurrent writer per Conn, and Publish is called from
// whatever goroutine committed the mutation.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

type Hub struct {
	mu    sync.RWMutex
	conns map[uint]map[*websocket.Conn]*client
}

func New() *Hub {
	return &Hub{conns: make(map[uint]map[*websocket.Conn]*client)}
}

// Register attaches a connection to the user's logical channel.
func (h *Hub) Register(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]*client)
	}
	h.conns[userID][conn] = &client{conn: conn}
}

func (h *Hub) Unregister(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Publish sends an event to every open connection of the user. Failed
// writes are logged and the connection is dropped from the channel; the
// caller never sees an error.
func (h *Hub) Publish(userID uint, name string, payload any) {
	frame, err := json.Marshal(Event{Name: name, Payload: payload})
	if err != nil {
		logutils.Log.Errorf("hub: marshal event %s: %v", name, err)
		return
	}

	h.mu.RLock()
	set := h.conns[userID]
	clients := make([]*client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(frame); err != nil {
			logutils.Log.Debugf("hub: drop dead connection of user %d: %v", userID, err)
			h.Unregister(userID, c.conn)
		}
	}
}

// ConnCount reports the number of open connections for the user.
func (h *Hub) ConnCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
