// Package websocket is the client-facing transport: it authenticates the
// upgrade request, admits the connection into the registry and routes
// inbound frames to the broker and the message service.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"chat-realtime/internal/broker"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/models"
	"chat-realtime/internal/registry"
	"chat-realtime/pkg/response"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const presenceTimeout = 3 * time.Second

// Authenticator resolves the user behind an upgrade request
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// ReadMarker is the slice of the message service the transport needs
type ReadMarker interface {
	MarkRead(ctx context.Context, channelID, userID string) (int64, error)
}

// Presence mirrors admissions and disconnects to a shared store
type Presence interface {
	SetUserOnline(ctx context.Context, userID string) error
	SetUserOffline(ctx context.Context, userID string) error
}

type Options struct {
	// Inbound frames per second and burst allowed per connection
	RateLimit      rate.Limit
	RateBurst      int
	AllowedOrigins []string
	Presence       Presence
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

type Hub struct {
	registry *registry.Registry
	broker   *broker.Broker
	messages ReadMarker
	auth     Authenticator
	presence Presence

	upgrader  websocket.Upgrader
	rateLimit rate.Limit
	rateBurst int

	// Live connections, including ones replaced in the registry
	mu      sync.Mutex
	clients map[string]*Client

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHub(reg *registry.Registry, brk *broker.Broker, messages ReadMarker, auth Authenticator, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 40
	}

	return &Hub{
		registry:  reg,
		broker:    brk,
		messages:  messages,
		auth:      auth,
		presence:  opts.Presence,
		upgrader:  newUpgrader(opts.AllowedOrigins),
		rateLimit: opts.RateLimit,
		rateBurst: opts.RateBurst,
		clients:   make(map[string]*Client),
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// ServeWS runs the handshake. An unauthenticated request is answered with
// 401 before upgrading, so it never reaches the registry.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.Authenticate(r)
	if err != nil {
		h.metrics.HandshakeRejected()
		h.logger.Warn("WebSocket handshake rejected", "remoteAddr", r.RemoteAddr, "error", err)
		status, body := response.NewErrorResponse(err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.logger.Debug("Failed to write handshake rejection", "remoteAddr", r.RemoteAddr, "error", err)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.metrics.HandshakeRejected()
		h.logger.Error("Failed to upgrade WebSocket connection", "userID", userID, "error", err)
		return
	}

	client := newClient(h, conn, userID)
	h.admit(client)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) admit(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	if replaced := h.registry.Register(c.userID, c); replaced != nil {
		c.logger.Info("Connection replaced previous registry entry", "replacedClientID", replaced.ID())
	}
	h.metrics.HandshakeAccepted()
	c.logger.Info("New WebSocket connection established")

	if h.presence != nil {
		ctx, cancel := context.WithTimeout(c.ctx, presenceTimeout)
		if err := h.presence.SetUserOnline(ctx, c.userID); err != nil {
			c.logger.Warn("Failed to record presence", "error", err)
		}
		cancel()
	}

	c.Send(models.EventConnected, ConnectData{ClientID: c.id, UserID: c.userID})
}

// disconnect drops the connection from the registry and every room. A
// connection that was already replaced leaves the newer entry alone.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	h.broker.LeaveAll(c.id)
	userID, removed := h.registry.Unregister(c.id)
	if !removed {
		c.logger.Debug("Client disconnected after being replaced")
		return
	}

	if h.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
		if err := h.presence.SetUserOffline(ctx, userID); err != nil {
			c.logger.Warn("Failed to clear presence", "error", err)
		}
		cancel()
	}
	c.logger.Info("Client disconnected")
}

// Shutdown closes every live connection and waits for their cleanup
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		h.mu.Lock()
		n := len(h.clients)
		h.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ConnectionCount is the number of open sockets, replaced ones included
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
