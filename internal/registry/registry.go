package registry

import (
	"log/slog"
	"sync"

	"chat-realtime/internal/metrics"
)

// Subscriber is a live, authenticated connection as the core sees it.
// The transport owns its lifetime; the registry and broker only hold references.
type Subscriber interface {
	ID() string
	UserID() string
	Send(event string, payload any) error
	Close() error
}

// Registry maps a user id to that user's current live connection.
// At most one entry exists per user: a later Register for the same user
// replaces the previous entry without closing the previous connection.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Subscriber // userID -> connection
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(logger *slog.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients: make(map[string]Subscriber),
		logger:  logger,
		metrics: m,
	}
}

// Register inserts or overwrites the mapping for userID and returns the
// connection it replaced, if any. The replaced connection is left open.
func (r *Registry) Register(userID string, s Subscriber) (replaced Subscriber) {
	r.mu.Lock()
	prev, had := r.clients[userID]
	r.clients[userID] = s
	n := len(r.clients)
	r.mu.Unlock()

	r.metrics.SetConnections(n)
	if had && prev.ID() != s.ID() {
		r.logger.Warn("Registry entry replaced", "userID", userID, "previousClientID", prev.ID(), "clientID", s.ID())
		return prev
	}
	r.logger.Info("Client registered", "userID", userID, "clientID", s.ID())
	return nil
}

// Unregister removes the entry whose connection id matches connID.
// Entries that were already replaced by a newer connection are left alone.
func (r *Registry) Unregister(connID string) (string, bool) {
	r.mu.Lock()
	var userID string
	found := false
	for uid, s := range r.clients {
		if s.ID() == connID {
			delete(r.clients, uid)
			userID, found = uid, true
			break
		}
	}
	n := len(r.clients)
	r.mu.Unlock()

	if found {
		r.metrics.SetConnections(n)
		r.logger.Info("Client unregistered", "userID", userID, "clientID", connID)
	}
	return userID, found
}

func (r *Registry) Lookup(userID string) (Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.clients[userID]
	return s, ok
}

func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// OnlineUsers returns the user ids that currently have a registry entry
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.clients))
	for uid := range r.clients {
		users = append(users, uid)
	}
	return users
}
