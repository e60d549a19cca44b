package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Sink receives encoded messages from a Host.
type Sink interface {
	Broadcast(msg []byte)
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	resets     chan struct{}
	done       chan struct{}
	count      atomic.Int64
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub's logger. Default: logs are discarded.
func WithHubLogger(logger *slog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithCheckOrigin overrides the upgrader's origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		resets:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves register, unregister and broadcast requests until ctx is done,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.count.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))
			h.logger.Info("client connected", "remote", c.remote, "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.count.Store(int64(len(h.clients)))
				h.logger.Info("client disconnected", "remote", c.remote, "clients", len(h.clients))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it rather than stall the frame loop.
					delete(h.clients, c)
					close(c.send)
					h.count.Store(int64(len(h.clients)))
					h.logger.Warn("client dropped", "remote", c.remote, "reason", "send buffer full")
				}
			}
		}
	}
}

// Broadcast queues msg for every connected client. It never blocks the
// caller for long: once the hub has stopped, messages are discarded.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Resets delivers one value per reset request from any client. Requests
// arriving before the previous one was consumed are coalesced.
func (h *Hub) Resets() <-chan struct{} {
	return h.resets
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// ServeHTTP upgrades the request to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(h, conn, r.RemoteAddr)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) requestReset() {
	select {
	case h.resets <- struct{}{}:
	default:
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
