package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"odds-arb-calculator/internal/alerts"
	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/odds"
	"odds-arb-calculator/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outbound messages
	sendBufferSize = 64
)

// Registry tracks connected clients.
type Registry interface {
	Unregister(client *Client)
}

// Client is one calculator session over a websocket. Odds edits go through a
// debounced converter session; arb inputs are recomputed on receipt.
type Client struct {
	ID   string
	conn *websocket.Conn
	Send chan models.ServerMessage

	registry  Registry
	session   *odds.Session
	engine    *arb.Engine
	notifier  *alerts.Notifier
	bufferBps string
	log       *logrus.Entry

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client with a fresh converter session.
func NewClient(id string, conn *websocket.Conn, registry Registry, opts Options, log *logrus.Entry) *Client {
	c := &Client{
		ID:        id,
		conn:      conn,
		Send:      make(chan models.ServerMessage, sendBufferSize),
		registry:  registry,
		engine:    arb.NewEngine(),
		notifier:  opts.Notifier,
		bufferBps: opts.bufferRaw(),
		log:       log.WithField("client", id),
		done:      make(chan struct{}),
	}
	c.session = odds.NewSession(opts.Debounce, c.onConversion)
	return c
}

// ReadPump reads client messages until the connection closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.shutdown()
		c.registry.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg models.ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.log.WithError(err).Warn("unexpected close")
				}
				return
			}
			c.handleClientMessage(msg)
		}
	}
}

// WritePump writes queued messages and keepalive pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case <-c.done:
			return

		case message := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues a message without blocking. It returns false when the
// client is closed or too slow to keep up.
func (c *Client) TrySend(msg models.ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	default:
		c.log.Warn("send buffer full, dropping message")
		return false
	}
}

// SendSnapshot queues the current converter state and the result for the
// default inputs, so a new client can render before its first edit.
func (c *Client) SendSnapshot() {
	c.TrySend(newMessage(models.MessageTypeOdds, models.ConversionView{
		Source:  odds.FormatAmerican,
		Raw:     "-110",
		Outcome: odds.OutcomeApplied,
		State:   models.NewStateView(c.session.State()),
	}))
	c.handleArb(arb.RawInputs{})
}

func (c *Client) handleClientMessage(msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeOdds:
		format, err := odds.ParseFormat(msg.Format)
		if err != nil {
			c.sendError("invalid_format", err.Error())
			return
		}
		c.session.Input(format, msg.Value)

	case models.MessageTypeArb:
		var raw arb.RawInputs
		if msg.Inputs != nil {
			raw = *msg.Inputs
		}
		c.handleArb(raw)

	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (c *Client) handleArb(raw arb.RawInputs) {
	if raw.BufferBps == "" {
		raw.BufferBps = c.bufferBps
	}
	raw = raw.SyncComplement().WithDefaults()
	in := arb.ParseInputs(raw)
	res := c.engine.Recompute(in)
	if c.notifier != nil {
		c.notifier.AlertArb("ws:"+c.ID, res)
	}

	c.TrySend(newMessage(models.MessageTypeArb, models.NewArbResponse(raw, in, res, odds.VigProportional)))
}

// onConversion runs on the debouncer's goroutine once input goes quiet.
func (c *Client) onConversion(conv odds.Conversion) {
	c.TrySend(newMessage(models.MessageTypeOdds, models.NewConversionView(conv)))
}

func (c *Client) sendError(code, message string) {
	c.TrySend(newMessage(models.MessageTypeError, models.ErrorMessage{
		Code:    code,
		Message: message,
	}))
}

// shutdown stops pending conversions and releases WritePump.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.session.Close()
		close(c.done)
	})
}

func newMessage(kind string, payload any) models.ServerMessage {
	return models.ServerMessage{
		Type:      kind,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
