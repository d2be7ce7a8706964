// handler/ws.handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"walletflow-service/internal/middleware"
	"walletflow-service/internal/usecase/workflow"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

type wsClient struct {
	userID string
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// trySend enqueues without blocking. The closed flag is checked under the
// client's own lock so a send can never race the channel close.
func (c *wsClient) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *wsClient) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub pushes stage-transition events to connected devices. Delivery is
// best-effort: a slow or absent client never blocks a stage transition.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*wsClient),
		logger:  logger,
	}
}

// NotifyStage implements workflow.Notifier.
func (h *Hub) NotifyStage(userID string, event workflow.StageEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("encode stage event failed", zap.Error(err))
		return
	}
	h.SendToUser(userID, raw)
}

func (h *Hub) SendToUser(userID string, message []byte) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if !client.trySend(message) {
		h.logger.Warn("dropping stage event, client gone or buffer full",
			zap.String("user_id", userID))
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	prev := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if prev != nil {
		prev.closeSend()
		if prev.conn != nil {
			prev.conn.Close()
		}
	}
	h.logger.Info("ws client connected", zap.String("user_id", c.userID))
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if cur, ok := h.clients[c.userID]; ok && cur == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()

	c.closeSend()
	h.logger.Info("ws client disconnected", zap.String("user_id", c.userID))
}

// HandleWebSocket upgrades the connection and streams stage events for the
// authenticated user.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{userID: userID, conn: conn, send: make(chan []byte, 32)}
	h.register(client)

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(45 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection; the event stream is one-way, client
// messages are ignored.
func (h *Hub) readPump(c *wsClient) {
	defer h.unregister(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
