package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Envelope is the wire frame pushed to connected clients.
type Envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

const KindNewNotification = "nueva_notificacion"

// Connection wraps a websocket with its owner. A user may hold several
// connections (multiple tabs); pushes fan out to all of them.
type Connection struct {
	conn    *websocket.Conn
	userID  snowflake.ID
	writeMu sync.Mutex

	// lastSeen is written by the read loop and read by the heartbeat
	// sweep, so it carries its own lock.
	seenMu   sync.Mutex
	lastSeen time.Time
}

// Touch refreshes the liveness timestamp, called from the read loop on pong.
func (c *Connection) Touch() {
	c.seenMu.Lock()
	c.lastSeen = time.Now()
	c.seenMu.Unlock()
}

// idleFor reports how long ago the connection last proved liveness.
func (c *Connection) idleFor() time.Duration {
	c.seenMu.Lock()
	defer c.seenMu.Unlock()
	return time.Since(c.lastSeen)
}

type Hub struct {
	mu          sync.RWMutex
	connections map[snowflake.ID]map[*Connection]struct{}
	log         *zap.Logger
}

func New(log *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[snowflake.ID]map[*Connection]struct{}),
		log:         log.Named("notification.hub"),
	}
}

// Add registers a connection for a user.
func (h *Hub) Add(userID snowflake.ID, conn *websocket.Conn) *Connection {
	c := &Connection{conn: conn, userID: userID, lastSeen: time.Now()}

	h.mu.Lock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*Connection]struct{})
	}
	h.connections[userID][c] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	h.log.Debug("ws connected",
		zap.String("user_id", userID.String()),
		zap.Int("connections", total),
	)
	return c
}

// Remove drops and closes a connection.
func (h *Hub) Remove(c *Connection) {
	h.mu.Lock()
	if conns, ok := h.connections[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.connections, c.userID)
		}
	}
	h.mu.Unlock()

	_ = c.conn.Close()
	h.log.Debug("ws disconnected", zap.String("user_id", c.userID.String()))
}

// Push sends a payload to every connection the user holds. Write failures
// drop the failing connection; the client reconnects and reloads.
func (h *Hub) Push(userID snowflake.ID, kind string, payload interface{}) {
	raw, err := json.Marshal(Envelope{Kind: kind, Payload: payload})
	if err != nil {
		h.log.Error("ws marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections[userID]))
	for c := range h.connections[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.writeMu.Lock()
		err := c.conn.WriteMessage(websocket.TextMessage, raw)
		c.writeMu.Unlock()
		if err != nil {
			h.log.Warn("ws send failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			h.Remove(c)
		}
	}
}

// ConnectionCount reports open connections for a user.
func (h *Hub) ConnectionCount(userID snowflake.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Heartbeat pings all connections on each tick and drops the ones that went
// quiet for more than two intervals. Blocks until stop is closed.
func (h *Hub) Heartbeat(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.sweep(interval)
		}
	}
}

func (h *Hub) sweep(interval time.Duration) {
	h.mu.RLock()
	var stale, alive []*Connection
	for _, conns := range h.connections {
		for c := range conns {
			if c.idleFor() > 2*interval {
				stale = append(stale, c)
				continue
			}
			alive = append(alive, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.Remove(c)
	}
	for _, c := range alive {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
		c.writeMu.Unlock()
	}
}
