package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/fileconv-go/internal/domain"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the gateway only listens locally
	},
}

const pingInterval = 30 * time.Second

var _ domain.ProgressSink = (*ProgressHub)(nil)

// progressClient serializes writes to one connection
type progressClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (pc *progressClient) write(messageType int, data []byte) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return pc.conn.WriteMessage(messageType, data)
}

// ProgressHub streams progress events to WebSocket clients. It is the
// controller's progress sink.
type ProgressHub struct {
	logger  *zap.Logger
	clients map[*progressClient]bool
	last    *domain.ProgressEvent
	mu      sync.RWMutex
}

// NewProgressHub creates a new progress hub
func NewProgressHub(log *zap.Logger) *ProgressHub {
	return &ProgressHub{
		logger:  log,
		clients: make(map[*progressClient]bool),
	}
}

// OnProgress broadcasts a progress event to all connected clients
func (h *ProgressHub) OnProgress(event domain.ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal progress event", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.last = &event
	clients := make([]*progressClient, 0, len(h.clients))
	for pc := range h.clients {
		clients = append(clients, pc)
	}
	h.mu.Unlock()

	for _, pc := range clients {
		if err := pc.write(websocket.TextMessage, data); err != nil {
			// Connection will be cleaned up by its handler goroutine
			h.logger.Debug("Failed to send progress event", zap.Error(err))
		}
	}
}

// Last returns the most recent event, if any
func (h *ProgressHub) Last() (domain.ProgressEvent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return domain.ProgressEvent{}, false
	}
	return *h.last, true
}

// ClientCount returns the number of connected clients
func (h *ProgressHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket handles GET /api/v1/progress/ws
func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	pc := &progressClient{conn: conn}

	h.mu.Lock()
	h.clients[pc] = true
	last := h.last
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, pc)
		h.mu.Unlock()
	}()

	h.logger.Info("Progress client connected", zap.String("remote_addr", c.Request.RemoteAddr))

	// Late joiners see where the current bar stands
	if last != nil {
		data, _ := json.Marshal(last)
		if err := pc.write(websocket.TextMessage, data); err != nil {
			return
		}
	}

	// Read messages from client (for close and pong)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := pc.write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
