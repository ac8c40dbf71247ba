package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/launchdash/launchdash/pkg/types"
	"github.com/launchdash/launchdash/server/internal/aggregate"
	"github.com/launchdash/launchdash/server/internal/view"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// readLimit caps the size of one inbound control message.
	readLimit = 1024

	defaultPingPeriod = 54 * time.Second
	defaultSendBuffer = 16
)

// Event names used in the message envelope.
const (
	EventViews      = "views"
	EventUpdate     = "update"
	EventError      = "error"
	EventSelectSite = "select_site"
	EventSetRange   = "set_range"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins; callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event   string      `json:"event"`
	Session string      `json:"session,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Request is a control message sent by a client.
type Request struct {
	Event string   `json:"event"`
	Site  string   `json:"site,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

// Observer receives session lifecycle and recomputation events.
type Observer interface {
	view.Observer
	SessionOpened()
	SessionClosed()
}

// Options configures a Hub. Zero fields take defaults.
type Options struct {
	Labeler    aggregate.Labeler
	Range      types.PayloadRange
	PingPeriod time.Duration
	SendBuffer int
	Observer   Observer
}

// Hub manages WebSocket sessions. Each connected client owns its own
// view.Controller, so selections in one session never affect another.
type Hub struct {
	src  view.Source
	opts Options

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket session.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	ctrl *view.Controller

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Hub serving sessions over src.
func New(src view.Source, opts Options) *Hub {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = defaultPingPeriod
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.Range == (types.PayloadRange{}) {
		opts.Range = types.DefaultPayloadRange()
	}
	return &Hub{
		src:     src,
		opts:    opts,
		clients: make(map[*client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes all active sessions.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves one session.
// The initial views are sent immediately on connect; afterwards every control
// message is answered with an update or an error. Blocks until the connection
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	ctrlOpts := []view.Option{
		view.WithLabeler(h.opts.Labeler),
		view.WithRange(h.opts.Range),
	}
	if h.opts.Observer != nil {
		ctrlOpts = append(ctrlOpts, view.WithObserver(h.opts.Observer))
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
		ctrl: view.New(h.src, ctrlOpts...),
		done: make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	h.enqueue(c, Message{Event: EventViews, Session: c.id, Data: c.ctrl.Views()})

	go c.writePump(h.opts.PingPeriod)
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.opts.Observer != nil {
		h.opts.Observer.SessionOpened()
	}
	slog.Debug("ws: session opened", "session", c.id)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	if ok {
		if h.opts.Observer != nil {
			h.opts.Observer.SessionClosed()
		}
		slog.Debug("ws: session closed", "session", c.id)
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.unregister(c)
	}
}

// enqueue queues msg for c. A client whose buffer is full is disconnected.
func (h *Hub) enqueue(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws: marshal message", "session", c.id, "err", err)
		return
	}
	select {
	case <-c.done:
	case c.send <- data:
	default:
		slog.Warn("ws: send buffer full, dropping session", "session", c.id)
		h.unregister(c)
	}
}

// handle applies one control message to the session's controller.
func (h *Hub) handle(c *client, raw []byte) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		h.enqueue(c, Message{Event: EventError, Error: "malformed message"})
		return
	}

	switch req.Event {
	case EventSelectSite:
		u, err := c.ctrl.SetSite(types.SiteSelection(req.Site))
		if err != nil {
			h.enqueue(c, Message{Event: EventError, Error: err.Error()})
			return
		}
		h.enqueue(c, Message{Event: EventUpdate, Data: u})
	case EventSetRange:
		if req.Min == nil || req.Max == nil {
			h.enqueue(c, Message{Event: EventError, Error: "set_range requires min and max"})
			return
		}
		u := c.ctrl.SetRange(types.PayloadRange{Min: *req.Min, Max: *req.Max})
		h.enqueue(c, Message{Event: EventUpdate, Data: u})
	default:
		h.enqueue(c, Message{Event: EventError, Error: "unknown event " + req.Event})
	}
}

// readPump reads control messages until the connection closes. Pongs extend
// the read deadline.
func (h *Hub) readPump(c *client) {
	pongWait := h.opts.PingPeriod * 10 / 9
	defer c.conn.Close()
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) &&
				!errors.Is(err, websocket.ErrReadLimit) {
				slog.Debug("ws: read failed", "session", c.id, "err", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		h.handle(c, msg)
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
