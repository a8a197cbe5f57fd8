// Package realtime streams run progress to websocket subscribers.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	sendBuffer   = 64
	historyLimit = 32
)

type client struct {
	conn *websocket.Conn
	send chan contracts.ProgressEvent
}

// Hub fans progress events out to every connected websocket client.
// Slow clients are dropped rather than blocking a run.
// ⭐ SSOT: 진행 상황 브로드캐스트는 이 허브에서만
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	history []contracts.ProgressEvent
}

// NewHub creates a new progress hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger: log.WithComponent("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Operator console; same-host UIs on other ports are allowed
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

var _ contracts.ProgressSink = (*Hub)(nil)

// Publish records the event and queues it for every client without blocking
func (h *Hub) Publish(event contracts.ProgressEvent) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, event)
	if len(h.history) > historyLimit {
		h.history = h.history[len(h.history)-historyLimit:]
	}

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.Debug("Dropping slow progress client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// History returns the most recent events, oldest first
func (h *Hub) History() []contracts.ProgressEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]contracts.ProgressEvent, len(h.history))
	copy(out, h.history)
	return out
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the client disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan contracts.ProgressEvent, sendBuffer)}

	h.mu.Lock()
	for _, e := range h.history {
		select {
		case c.send <- e:
		default:
		}
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Progress client connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

// Close disconnects every client
func (h *Hub) Close(_ context.Context) {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop discards inbound messages and keeps the read deadline fresh via pongs
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Progress client read error")
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
