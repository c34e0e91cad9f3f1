package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
	"github.com/GriffinCanCode/phoneshell/internal/domain/session"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/phoneshell/internal/shared/utils"
)

// UpdateSnapshot is the first message on every UI stream
const UpdateSnapshot = "snapshot"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // the NUI page is served from the game client
	},
}

// Handler serves the websocket endpoints
type Handler struct {
	hub     *Hub
	manager *session.Manager
	logger  *zap.Logger
	metrics *monitoring.Metrics
	timeout time.Duration
}

// NewHandler creates the websocket handler
func NewHandler(hub *Hub, manager *session.Manager, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:     hub,
		manager: manager,
		logger:  logger,
		metrics: metrics,
		timeout: 5 * time.Second,
	}
}

// Register mounts the websocket routes on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/ws/phones/:player", h.HandleStream)
	r.GET("/ws/bridge", h.HandleBridge)
}

// HandleStream upgrades to a UI stream for one player. The current phone is sent
// first, then every update the session publishes.
func (h *Handler) HandleStream(c *gin.Context) {
	player := c.Param("player")
	if err := utils.ValidatePlayer(player); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	// registered before the snapshot is taken so no update falls in between
	cl := &client{player: player, conn: conn, send: make(chan []byte, sendBuffer)}
	h.hub.register(cl)
	go h.hub.writePump(cl)

	snap, err := h.manager.Snapshot(c.Request.Context(), player)
	if err != nil {
		h.logger.Error("Failed to load phone for stream", zap.String("player", player), zap.Error(err))
		h.hub.unregister(cl)
		return
	}
	h.send(cl, session.Update{Type: UpdateSnapshot, Snapshot: snap}, UpdateSnapshot)
	h.logger.Debug("UI stream opened", zap.String("player", player))

	h.readStream(cl)
}

// readStream answers pings and detects disconnects
func (h *Handler) readStream(c *client) {
	defer func() {
		h.hub.unregister(c)
		h.logger.Debug("UI stream closed", zap.String("player", c.player))
	}()

	c.conn.SetReadLimit(int64(utils.MaxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		msgType := gjson.GetBytes(data, "type").String()
		h.metrics.RecordWSMessage("in", msgType)
		if msgType == "ping" {
			h.send(c, gin.H{"type": "pong"}, "pong")
		}
	}
}

func (h *Handler) send(c *client, msg any, msgType string) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msgType), zap.Error(err))
		return
	}
	if h.hub.queue(c, data) {
		h.metrics.RecordWSMessage("out", msgType)
	}
}

// HandleBridge upgrades to the game-server push channel. Each text message is
// one event; every event is answered with an ack or an error.
func (h *Handler) HandleBridge(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	h.logger.Info("Bridge connected", zap.String("remote", c.Request.RemoteAddr))

	conn.SetReadLimit(int64(utils.MaxMessageSize))
	ctx := c.Request.Context()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("Bridge read error", zap.Error(err))
			}
			h.logger.Info("Bridge disconnected")
			return
		}

		reply := h.handleBridgeMessage(ctx, data)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("Bridge write error", zap.Error(err))
			return
		}
	}
}

// BridgeReply acknowledges one pushed event
type BridgeReply struct {
	Type    string `json:"type"`
	Event   string `json:"event,omitempty"`
	Player  string `json:"player,omitempty"`
	Version uint64 `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) handleBridgeMessage(ctx context.Context, data []byte) BridgeReply {
	ev, err := bridge.ParseEvent(data)
	if err != nil {
		h.metrics.RecordWSMessage("in", "invalid")
		if !errors.Is(err, bridge.ErrUnknownEvent) {
			h.logger.Debug("Rejected bridge message", zap.Error(err))
		}
		return BridgeReply{Type: "error", Error: err.Error()}
	}
	h.metrics.RecordWSMessage("in", ev.Type)

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	snap, err := h.manager.HandleEvent(ctx, ev)
	if err != nil {
		return BridgeReply{Type: "error", Event: ev.Type, Player: ev.Player, Error: err.Error()}
	}
	return BridgeReply{Type: "ack", Event: ev.Type, Player: ev.Player, Version: snap.Version}
}
