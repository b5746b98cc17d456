package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/qc-advancedmedic/nui/pkg/nui"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendChSize     = 64
)

type client struct {
	conn *ws.Conn
	send chan []byte
}

// Hub fans view updates out to every connected overlay and feeds their
// actions back into the service.
type Hub struct {
	svc     Service
	logger  *slog.Logger
	metrics *metrics
	origins []string

	mu      sync.Mutex
	clients map[*client]struct{}
	notify  chan struct{}
}

func newHub(svc Service, logger *slog.Logger, m *metrics, origins []string) *Hub {
	return &Hub{
		svc:     svc,
		logger:  logger,
		metrics: m,
		origins: origins,
		clients: make(map[*client]struct{}),
		notify:  make(chan struct{}, 1),
	}
}

// Notify schedules a broadcast of the current view. Calls coalesce while
// a broadcast is pending.
func (h *Hub) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Clients returns the number of connected overlays.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts view changes until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case <-h.notify:
			h.broadcast()
		}
	}
}

func (h *Hub) viewMessage() ([]byte, error) {
	vm := h.svc.ViewModel()
	return json.Marshal(nui.ViewMessage{Type: nui.TypeView, Version: vm.Version, Payload: vm})
}

func (h *Hub) broadcast() {
	data, err := h.viewMessage()
	if err != nil {
		h.logger.Error("Failed to encode view", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// slow overlay, drop it
			h.logger.Warn("Dropping unresponsive overlay")
			close(c.send)
			delete(h.clients, c)
		}
	}
	h.metrics.clients.Set(float64(len(h.clients)))
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.origins, "*") || slices.Contains(h.origins, origin)
}

// ServeWS upgrades the request and serves an overlay connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := ws.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendChSize)}
	if data, err := h.viewMessage(); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.metrics.clients.Set(float64(len(h.clients)))
	h.mu.Unlock()
	h.logger.Info("Overlay connected", "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(r.Context(), c)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.metrics.clients.Set(float64(len(h.clients)))
	h.mu.Unlock()
}

// readPump reads overlay actions and answers each with an ack.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var env nui.Envelope
		_ = json.Unmarshal(message, &env)

		ack := nui.AckMessage{Type: nui.TypeAck, For: env.Type}
		if _, err := h.svc.HandleAction(ctx, message); err != nil {
			ack.Error = err.Error()
		}
		h.metrics.observe("action", env.Type, ack.Error == "")

		data, err := json.Marshal(ack)
		if err != nil {
			continue
		}
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			select {
			case c.send <- data:
			default:
			}
		}
		h.mu.Unlock()
	}
}

// writePump is the only writer of the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(ws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(ws.TextMessage, data); err != nil {
				h.logger.Warn("WebSocket write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
