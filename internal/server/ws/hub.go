// Package ws serves the interactive viewer over WebSocket. Each connection
// owns one viewing session; search and load-more requests arrive as JSON text
// frames and pages go back the same way.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/server/handler"
	"github.com/alanyoungcy/polyview/internal/service"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 16
)

// Actions a client may send.
const (
	ActionSearch = "search"
	ActionMore   = "more"
)

var errUnknownAction = errors.New("unknown action")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Viewer is the session-aware part of service.Viewer.
type Viewer interface {
	Search(ctx context.Context, sess *service.Session, q service.Query) (*service.Page, error)
	LoadMore(ctx context.Context, sess *service.Session) (*service.Page, error)
}

// request is the JSON message a client sends.
type request struct {
	ID      string `json:"id,omitempty"`
	Action  string `json:"action"`
	Address string `json:"address,omitempty"`
	Tab     string `json:"tab,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// Envelope is every message the server sends.
type Envelope struct {
	Type      string        `json:"type"`
	ID        string        `json:"id,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	Payload   *service.Page `json:"payload,omitempty"`
	Error     string        `json:"error,omitempty"`
	Code      string        `json:"code,omitempty"`
}

// Envelope types.
const (
	TypeHello     = "hello"
	TypePage      = "page"
	TypePositions = "positions"
	TypeError     = "error"
)

// Hub tracks connected clients. Run must be running for HandleWS to accept
// connections. A Hub is single-use: once Run returns, new connections
// are refused.
type Hub struct {
	viewer     Viewer
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a Hub serving pages from viewer.
func NewHub(viewer Viewer, logger *slog.Logger) *Hub {
	return &Hub{
		viewer:     viewer,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "ws_hub")),
	}
}

// Run handles client registration until ctx is cancelled, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Info("ws: client connected",
				slog.String("session", c.sess.ID()),
				slog.Int("total_clients", h.ClientCount()),
			)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			h.mu.Unlock()
			h.logger.Info("ws: client disconnected",
				slog.String("session", c.sess.ID()),
				slog.Int("total_clients", h.ClientCount()),
			)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWS upgrades the request and starts a session for the connection.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		sess:   service.NewSession(),
		ctx:    ctx,
		cancel: cancel,
	}

	select {
	case h.register <- c:
	case <-h.done:
		cancel()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	c.reply(Envelope{Type: TypeHello, SessionID: c.sess.ID()})

	go c.writePump()
	go c.readPump()
}

// client is one WebSocket connection and its session.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	sess   *service.Session
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// close cancels in-flight requests and closes send. Safe to call twice.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

// reply queues env for the write pump, dropping it if the client is closed
// or too slow.
func (c *client) reply(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.hub.logger.Error("ws: marshal reply", slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("ws: dropping message for slow client",
			slog.String("session", c.sess.ID()),
		)
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var req request
		if err := json.Unmarshal(message, &req); err != nil {
			c.replyError("", &domain.ValidationError{Field: "message", Err: err})
			continue
		}
		// Requests run concurrently so an overlapping one is answered with
		// ErrBusy by the session instead of queueing.
		go c.handle(req)
	}
}

func (c *client) handle(req request) {
	var (
		page *service.Page
		err  error
	)
	switch req.Action {
	case ActionSearch:
		page, err = c.hub.viewer.Search(c.ctx, c.sess, service.Query{
			Address: req.Address,
			Tab:     req.Tab,
			From:    req.From,
			To:      req.To,
		})
	case ActionMore:
		page, err = c.hub.viewer.LoadMore(c.ctx, c.sess)
	default:
		err = &domain.ValidationError{Field: "action", Value: req.Action, Err: errUnknownAction}
	}
	if err != nil {
		c.replyError(req.ID, err)
		return
	}

	typ := TypePage
	if page.Tab == service.TabPositions {
		typ = TypePositions
	}
	c.reply(Envelope{Type: typ, ID: req.ID, SessionID: c.sess.ID(), Payload: page})
}

func (c *client) replyError(id string, err error) {
	if c.ctx.Err() != nil {
		return
	}
	_, body := handler.Classify(err)
	c.reply(Envelope{
		Type:      TypeError,
		ID:        id,
		SessionID: c.sess.ID(),
		Error:     body.Error,
		Code:      body.Code,
	})
}

// writePump sends queued replies as text frames and pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
