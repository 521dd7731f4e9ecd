package websocket

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/espresso/internal/metrics"
)

const (
	defaultSendBuffer   = 256
	defaultWriteTimeout = 10 * time.Second
)

// Dispatcher receives the inbound events of a connection. Calls for one
// connection are made sequentially, in read order, and Disconnect is always
// the last call.
type Dispatcher interface {
	Join(ctx context.Context, connectionID, room string)
	Send(ctx context.Context, connectionID, text string)
	Disconnect(ctx context.Context, connectionID string)
}

// Config configures a Bridge.
type Config struct {
	// SendBuffer is the per-client outbound queue length.
	SendBuffer int
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
	// AllowedOrigin is the browser origin allowed to connect, e.g.
	// "http://localhost:5177". Empty or "*" accepts any origin.
	AllowedOrigin string
}

// Bridge manages all WebSocket connections and their room broadcast groups.
type Bridge struct {
	// clients maps connection ids to live clients.
	clients map[string]*Client
	// groups maps room names to the clients subscribed to them.
	groups map[string]map[string]*Client
	closed bool
	mu     sync.RWMutex

	whitelist    *EventWhitelist
	sendBuffer   int
	writeTimeout time.Duration
	accept       *websocket.AcceptOptions
	metrics      *metrics.Collectors
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBridge initializes a new Bridge, ready to handle connections.
func NewBridge(cfg Config, m *metrics.Collectors) *Bridge {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if m == nil {
		m = metrics.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		clients:      make(map[string]*Client),
		groups:       make(map[string]map[string]*Client),
		whitelist:    DefaultEventWhitelist(),
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
		accept:       acceptOptions(cfg.AllowedOrigin),
		metrics:      m,
		logger:       slog.Default().With("component", "websocket-bridge"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

func acceptOptions(origin string) *websocket.AcceptOptions {
	if origin == "" || origin == "*" {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return &websocket.AcceptOptions{OriginPatterns: []string{origin}}
	}
	return &websocket.AcceptOptions{OriginPatterns: []string{u.Host}}
}

// Whitelist returns the inbound event whitelist.
func (b *Bridge) Whitelist() *EventWhitelist {
	return b.whitelist
}

// Handler returns an echo.HandlerFunc that upgrades the request and feeds the
// connection's inbound events to d.
func (b *Bridge) Handler(d Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.RLock()
		closed := b.closed
		b.mu.RUnlock()
		if closed {
			return c.String(http.StatusServiceUnavailable, "Server is shutting down")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), b.accept)
		if err != nil {
			b.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
			return nil
		}

		client := newClient(uuid.NewString(), conn, b.sendBuffer)
		if !b.register(client) {
			conn.Close(websocket.StatusGoingAway, "Server is shutting down")
			return nil
		}

		go b.writePump(client)
		go b.readPump(client, d)
		return nil
	}
}

// register adds the client and accounts for its two pumps.
func (b *Bridge) register(client *Client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	b.clients[client.ID] = client
	b.wg.Add(2)
	b.metrics.WSConnections.Inc()
	b.logger.Info("Client connected", "connection_id", client.ID, "connections", len(b.clients))
	return true
}

// unregister removes the client from every broadcast group and closes its
// send channel.
func (b *Bridge) unregister(client *Client) {
	b.mu.Lock()
	if _, ok := b.clients[client.ID]; ok {
		delete(b.clients, client.ID)
		if group, ok := b.groups[client.room]; ok {
			delete(group, client.ID)
			if len(group) == 0 {
				delete(b.groups, client.room)
			}
		}
		b.metrics.WSConnections.Dec()
	}
	remaining := len(b.clients)
	b.mu.Unlock()

	client.Close()
	b.logger.Info("Client disconnected", "connection_id", client.ID, "connections", remaining)
}

// readPump dispatches inbound frames one at a time until the connection
// fails, then unregisters the client and reports the disconnect.
func (b *Bridge) readPump(client *Client, d Dispatcher) {
	defer b.wg.Done()
	defer func() {
		b.unregister(client)
		d.Disconnect(b.ctx, client.ID)
		client.conn.CloseNow()
	}()

	for {
		_, data, err := client.conn.Read(b.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				b.logger.Debug("WebSocket closed by client", "connection_id", client.ID)
			case errors.Is(err, io.EOF) || errors.Is(err, context.Canceled):
			default:
				b.logger.Warn("WebSocket read error", "connection_id", client.ID, "error", err)
			}
			return
		}
		b.dispatch(client, d, data)
	}
}

func (b *Bridge) dispatch(client *Client, d Dispatcher, data []byte) {
	frame, err := decodeFrame(data)
	if err != nil {
		b.logger.Warn("Ignoring malformed frame", "connection_id", client.ID, "error", err)
		return
	}
	if !b.whitelist.IsAllowed(frame.Event) {
		b.logger.Debug("Ignoring unknown event", "connection_id", client.ID, "event", frame.Event)
		return
	}

	switch frame.Event {
	case EventJoinRoom:
		d.Join(b.ctx, client.ID, decodeRoom(frame.Data))
	case EventChatMessage:
		text, err := decodeText(frame.Data)
		if err != nil {
			b.logger.Warn("Ignoring malformed chat message", "connection_id", client.ID, "error", err)
			return
		}
		d.Send(b.ctx, client.ID, text)
	}
}

// writePump writes queued frames to the connection until the send channel
// is closed or a write fails.
func (b *Bridge) writePump(client *Client) {
	defer b.wg.Done()
	defer client.conn.CloseNow()

	for message := range client.send {
		ctx, cancel := context.WithTimeout(b.ctx, b.writeTimeout)
		err := client.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			b.logger.Warn("WebSocket write error", "connection_id", client.ID, "error", err)
			return
		}
	}
}

// Subscribe adds a connection to a room's broadcast group. It returns false
// if the connection is gone.
func (b *Bridge) Subscribe(connectionID, room string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	client, ok := b.clients[connectionID]
	if !ok {
		return false
	}
	if client.room != "" && client.room != room {
		delete(b.groups[client.room], connectionID)
	}
	group, ok := b.groups[room]
	if !ok {
		group = make(map[string]*Client)
		b.groups[room] = group
	}
	group[connectionID] = client
	client.room = room
	return true
}

// Emit sends an event to a single connection.
func (b *Bridge) Emit(connectionID, event string, payload any) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		b.logger.Error("Failed to encode frame", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	client, ok := b.clients[connectionID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	client.SendMessage(frame)
}

// Broadcast sends an event to every connection subscribed to room except the
// listed connection ids. The frame is encoded once.
func (b *Bridge) Broadcast(room, event string, payload any, except ...string) {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		b.logger.Error("Failed to encode frame", "event", event, "error", err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, client := range b.groups[room] {
		if containsID(except, id) {
			continue
		}
		client.SendMessage(frame)
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// ConnectionCount returns the number of open connections.
func (b *Bridge) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close rejects new connections, closes every open connection and waits for
// their pumps to finish.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	clients := make([]*Client, 0, len(b.clients))
	for _, client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, client := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			c.conn.Close(websocket.StatusGoingAway, "Server is shutting down")
		}(client)
	}
	wg.Wait()

	b.cancel()
	b.wg.Wait()
	b.logger.Info("WebSocket bridge closed", "connections", len(clients))
	return nil
}
