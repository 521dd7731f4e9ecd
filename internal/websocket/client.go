package websocket

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Client represents a single connected WebSocket client.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	room string

	mu     sync.RWMutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, buffer int) *Client {
	return &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

// SendMessage enqueues a frame without blocking. A full buffer drops the
// frame. It uses a read lock to ensure the channel is not closed concurrently.
func (c *Client) SendMessage(msg []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		slog.Warn("Client send channel full, dropping message", "connection_id", c.ID)
	}
}

// Close closes the client's send channel, which stops its write pump.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
