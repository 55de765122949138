package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub is an http.Handler that upgrades requests to WebSocket connections and broadcasts each
// published snapshot as JSON to every connected client. Clients whose write fails are dropped.
type Hub struct {
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu      *sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	closed  bool
}

var _ Sink = &Hub{}
var _ http.Handler = &Hub{}

// NewHub creates a Hub that accepts connections from any origin.
//
// Returns:
//   - *Hub: the hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout: 2 * time.Second,
		mu:           &sync.RWMutex{},
		clients:      make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it disconnects.
// Messages sent by clients are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Stream] websocket upgrade error:", err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends the snapshot's JSON to every client.
func (h *Hub) Publish(snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	var failed []*websocket.Conn
	for conn, connMu := range h.clients {
		connMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		connMu.Unlock()
		if err != nil {
			log.Println("[Stream] websocket write error:", err)
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		h.remove(conn)
	}
	return nil
}

// Close disconnects every client and rejects further connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	return nil
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}
