package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"EquityPulse/internal/catalog"
	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	applogger "EquityPulse/pkg/logger"
)

const sendBuffer = 256

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Hub fans finished reports out to websocket subscribers.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	l       *applogger.Logger
}

func NewHub(l *applogger.Logger) *Hub {
	if l == nil {
		l = applogger.Nop()
	}
	return &Hub{clients: make(map[*Client]bool), l: l}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/reports", h.Serve)
}

// Serve upgrades the request. An optional ticker query parameter limits the
// stream to one symbol.
func (h *Hub) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade error", applogger.Error(err))
		return nil
	}
	h.handle(conn, catalog.Normalize(c.QueryParam("ticker")))
	return nil
}

func (h *Hub) handle(conn *websocket.Conn, ticker string) {
	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
		ticker: ticker,
	}
	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.l.Debug("ws client connected", applogger.String("ticker", ticker), applogger.Int("clients", n))

	go client.writePump()
	go client.readPump()
}

// Broadcast implements domrepo.ReportBroadcaster. Slow clients miss messages
// instead of blocking the caller.
func (h *Hub) Broadcast(env *models.ReportEnvelope) {
	if env == nil {
		return
	}
	msg, err := json.Marshal(env)
	if err != nil {
		h.l.Error("ws marshal report error", applogger.String("ticker", env.Ticker), applogger.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.ticker != "" && c.ticker != env.Ticker {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.l.Warn("ws client slow, report dropped", applogger.String("ticker", env.Ticker))
		}
	}
}

// RemoveClient unregisters c and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

var _ domrepo.ReportBroadcaster = (*Hub)(nil)
