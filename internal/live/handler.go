package live

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"odds-arb-calculator/internal/alerts"
	"odds-arb-calculator/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins
		return true
	},
}

// Options configures each client session.
type Options struct {
	Debounce  time.Duration
	BufferBps float64
	Notifier  *alerts.Notifier
}

func (o Options) bufferRaw() string {
	return strconv.FormatFloat(o.BufferBps, 'f', -1, 64)
}

// Handler upgrades connections and tracks the live clients.
type Handler struct {
	ctx  context.Context
	opts Options
	log  *logrus.Entry

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHandler creates a websocket handler. Clients are stopped when ctx is
// cancelled, independent of the upgrading request.
func NewHandler(ctx context.Context, opts Options) *Handler {
	return &Handler{
		ctx:     ctx,
		opts:    opts,
		log:     logging.WithComponent("live"),
		clients: make(map[string]*Client),
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := NewClient(uuid.NewString(), conn, h, h.opts, h.log)
	h.register(c)
	c.SendSnapshot()

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	h.log.WithField("client", c.ID).Info("Session opened")
}

func (h *Handler) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client once its read loop ends.
func (h *Handler) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()

	if ok {
		h.log.WithField("client", c.ID).Info("Session closed")
	}
}

// ClientCount returns the number of open sessions.
func (h *Handler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
