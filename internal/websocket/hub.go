package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// Hub fans change notices out to every connected public page.
type Hub struct {
	log          *zap.SugaredLogger
	connections  map[string]*Connection
	mu           sync.RWMutex
	shutdownOnce sync.Once
	closed       bool
	sendBuffer   int
}

// Connection is one subscriber of the change feed.
type Connection struct {
	ID     string
	Conn   *websocket.Conn
	sendCh chan types.ChangeEvent
	mu     sync.Mutex
	closed bool
}

type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		SendBuffer:   32,
	}
}

func NewHub(cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}
	return &Hub{
		log:         logger.GetLogger().Named("change_feed"),
		connections: make(map[string]*Connection),
		sendBuffer:  config.SendBuffer,
	}
}

// Register adds a connection. After Shutdown it returns nil.
func (h *Hub) Register(conn *websocket.Conn) *Connection {
	connection := &Connection{
		ID:     uuid.NewString(),
		Conn:   conn,
		sendCh: make(chan types.ChangeEvent, h.sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.connections[connection.ID] = connection
	count := len(h.connections)
	h.mu.Unlock()

	h.log.Debugw("Change feed subscriber registered", "connectionID", connection.ID, "subscribers", count)
	return connection
}

func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	conn, ok := h.connections[id]
	if ok {
		delete(h.connections, id)
	}
	h.mu.Unlock()

	if ok {
		h.closeConnection(conn, "unregistered")
	}
}

func (h *Hub) closeConnection(conn *Connection, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	close(conn.sendCh)
	conn.mu.Unlock()

	if conn.Conn != nil {
		_ = conn.Conn.Close(websocket.StatusNormalClosure, reason)
	}
	h.log.Debugw("Change feed subscriber closed", "connectionID", conn.ID, "reason", reason)
}

// Broadcast queues event for every subscriber. A subscriber whose buffer is
// full misses the event; it will pick the change up on its next fetch.
func (h *Hub) Broadcast(event types.ChangeEvent) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if !conn.offer(event) {
			h.log.Warnw("Change feed buffer full, dropping event",
				"connectionID", conn.ID,
				"scope", event.Scope)
		}
	}
}

func (c *Connection) offer(event types.ChangeEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.sendCh <- event:
		return true
	default:
		return false
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[string]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, "server shutdown")
		}
	})

	h.log.Info("Change feed hub shutdown complete")
	return ctx.Err()
}

// SendChannel is drained by the handler's write loop.
func (c *Connection) SendChannel() <-chan types.ChangeEvent {
	return c.sendCh
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
