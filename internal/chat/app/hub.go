package app

import (
	"errors"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ConnLike is the write/read surface of a websocket connection the hub
// needs; *websocket.Conn satisfies it and tests substitute fakes.
type ConnLike interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var (
	// ErrClientClosed is returned when enqueuing to a closed connection.
	ErrClientClosed = errors.New("client connection closed")
	// ErrSendBufferFull is returned when the outbound queue is saturated.
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Client is one live connection of one user. Outbound delivery goes through
// a buffered queue drained by a single WritePump goroutine, so concurrent
// broadcasts never interleave writes on the socket.
type Client struct {
	ID       string
	UserID   int64
	Username string

	conn   ConnLike
	send   chan []byte
	closed chan struct{}
	once   sync.Once
}

// NewClient wraps an accepted connection.
func NewClient(userID int64, username string, conn ConnLike, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		closed:   make(chan struct{}),
	}
}

// Send enqueues a payload without blocking. A full queue counts as a send
// failure so one stuck connection cannot stall a broadcast.
func (c *Client) Send(payload []byte) error {
	select {
	case <-c.closed:
		return ErrClientClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.closed:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// WritePump drains the outbound queue onto the socket until the client is
// closed or a write fails.
func (c *Client) WritePump() {
	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}

// Close shuts the connection down; safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// Hub is the connection registry: it tracks every live connection per user
// id and derives presence from it. One instance is constructed in main and
// injected wherever delivery is needed.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64][]*Client
}

// NewHub create an empty Hub.
func NewHub() *Hub {
	return &Hub{connections: make(map[int64][]*Client)}
}

// Register adds a connection to the user's live set and reports whether it
// is the user's first one (the offline-to-online presence edge).
func (h *Hub) Register(c *Client) (first bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	first = len(h.connections[c.UserID]) == 0
	h.connections[c.UserID] = append(h.connections[c.UserID], c)
	return first
}

// Unregister removes a connection and reports whether the user's live set
// became empty (the online-to-offline presence edge). Unknown connections
// are ignored.
func (h *Hub) Unregister(c *Client) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.connections[c.UserID]
	for i, existing := range clients {
		if existing.ID == c.ID {
			clients = append(clients[:i], clients[i+1:]...)
			break
		}
	}

	if len(clients) == 0 {
		if _, ok := h.connections[c.UserID]; ok {
			delete(h.connections, c.UserID)
			return true
		}
		return false
	}
	h.connections[c.UserID] = clients
	return false
}

// Deliver sends payload to every live connection of the user, best effort.
// A connection whose send fails is closed and not retried; its read loop
// then runs the normal disconnect cleanup, so presence edges still fire
// exactly once.
func (h *Hub) Deliver(userID int64, payload []byte) {
	h.mu.RLock()
	snapshot := make([]*Client, len(h.connections[userID]))
	copy(snapshot, h.connections[userID])
	h.mu.RUnlock()

	for _, c := range snapshot {
		if err := c.Send(payload); err != nil {
			c.Close()
		}
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID]) > 0
}

// OnlineUserIDs returns a snapshot of all users with a live connection.
func (h *Hub) OnlineUserIDs() []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]int64, 0, len(h.connections))
	for id := range h.connections {
		ids = append(ids, id)
	}
	return ids
}
