package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/domain/session"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// client is one UI stream of a player. send is closed by the hub when the
// client is unregistered.
type client struct {
	player string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans phone updates out to every UI stream of the player. It implements
// session.Publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		logger:  logger,
		metrics: metrics,
	}
}

// Publish encodes u once and queues it on every stream of player. A stream whose
// buffer is full is dropped; the UI reconnects and receives a fresh snapshot.
func (h *Hub) Publish(player string, u session.Update) {
	if h.Count(player) == 0 {
		return
	}
	data, err := sonic.Marshal(u)
	if err != nil {
		h.logger.Error("Failed to encode update", zap.String("player", player), zap.Error(err))
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients[player] {
		select {
		case c.send <- data:
			h.metrics.RecordWSMessage("out", u.Type)
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("UI stream too slow, dropping", zap.String("player", player))
		h.unregister(c)
	}
}

// Count returns the number of open streams for player
func (h *Hub) Count(player string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[player])
}

// Close drops every stream
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
			h.metrics.DecWSConnections()
		}
	}
	h.clients = make(map[string]map[*client]struct{})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	set, ok := h.clients[c.player]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.player] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.IncWSConnections()
}

// queue sends data to one registered stream without blocking
func (h *Hub) queue(c *client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.player][c]; !ok {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, present := h.clients[c.player][c]
	if present {
		delete(h.clients[c.player], c)
		if len(h.clients[c.player]) == 0 {
			delete(h.clients, c.player)
		}
		close(c.send)
	}
	h.mu.Unlock()

	if present {
		h.metrics.DecWSConnections()
	}
}

// writePump owns all writes to the connection
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("UI stream write failed", zap.String("player", c.player), zap.Error(err))
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}
