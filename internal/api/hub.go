package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many snapshots a client may lag before it is dropped.
	sendBuffer = 8
)

// client owns one connection; only its writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes dashboard snapshots to websocket clients.
type Hub struct {
	snapshot func() interface{}

	lock    sync.Mutex
	clients map[*client]bool
}

// NewHub creates a hub that broadcasts whatever snapshot returns.
func NewHub(snapshot func() interface{}) *Hub {
	return &Hub{
		snapshot: snapshot,
		clients:  make(map[*client]bool),
	}
}

// Run broadcasts a snapshot every interval until ctx is cancelled.
func (h *Hub) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.Clients() == 0 {
				continue
			}
			msg, err := json.Marshal(h.snapshot())
			if err != nil {
				log.Printf("[ERROR] marshal snapshot: %v", err)
				continue
			}
			h.Broadcast(msg)
		}
	}
}

// Broadcast queues msg for every client without blocking. Clients whose
// queue is full are dropped.
func (h *Hub) Broadcast(msg []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("[WARN] websocket client %s too slow, dropping", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// HandleWS upgrades the request, queues an initial snapshot and registers the client.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade: %v", err)
		return
	}

	msg, err := json.Marshal(h.snapshot())
	if err != nil {
		log.Printf("[ERROR] marshal snapshot: %v", err)
		conn.Close()
		return
	}

	c := h.register(conn, msg)
	go h.writePump(c)
	go h.readUntilClosed(c)
}

// register adds conn with initial already queued.
func (h *Hub) register(conn *websocket.Conn, initial ...[]byte) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	for _, msg := range initial {
		c.send <- msg
	}
	h.lock.Lock()
	h.clients[c] = true
	h.lock.Unlock()
	return c
}

// writePump writes queued messages until the queue is closed or a write fails.
func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			return
		}
	}
}

// readUntilClosed drains client frames so close and ping frames are processed.
func (h *Hub) readUntilClosed(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) closeAll() {
	h.lock.Lock()
	defer h.lock.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
