// Package broker manages channel rooms and fans events out to the
// connections subscribed to a channel.
//
// Joining is not checked against any membership source: any authenticated
// connection may join any channel id and will receive its broadcasts.
package broker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chat-realtime/internal/events"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/models"
	"chat-realtime/internal/registry"
)

// SendRequest is the structural shape of a client "sendMessage" frame
type SendRequest struct {
	ChannelID string `json:"channelId"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
}

type Broker struct {
	mu    sync.RWMutex
	rooms map[string]map[string]registry.Subscriber // channelID -> connID -> conn
	joins map[string]map[string]struct{}            // connID -> channelIDs

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates the broker and subscribes it to the bus topics it relays.
// Call it once during startup composition.
func New(bus *events.Bus, logger *slog.Logger, m *metrics.Metrics) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Broker{
		rooms:   make(map[string]map[string]registry.Subscriber),
		joins:   make(map[string]map[string]struct{}),
		logger:  logger,
		metrics: m,
	}
	if bus != nil {
		bus.Subscribe(events.TopicMessageSent, b.onMessageSent)
		bus.Subscribe(events.TopicChannelRead, b.onChannelRead)
		bus.Subscribe(events.TopicMessageEdited, b.onMessageEdited)
		bus.Subscribe(events.TopicMessageDeleted, b.onMessageDeleted)
	}
	return b
}

// Join subscribes s to channelID
func (b *Broker) Join(s registry.Subscriber, channelID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rooms[channelID] == nil {
		b.rooms[channelID] = make(map[string]registry.Subscriber)
	}
	b.rooms[channelID][s.ID()] = s

	if b.joins[s.ID()] == nil {
		b.joins[s.ID()] = make(map[string]struct{})
	}
	b.joins[s.ID()][channelID] = struct{}{}

	b.logger.Debug("Client joined channel", "clientID", s.ID(), "userID", s.UserID(), "channelID", channelID)
}

// Leave unsubscribes s from channelID
func (b *Broker) Leave(s registry.Subscriber, channelID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(s.ID(), channelID)
	b.logger.Debug("Client left channel", "clientID", s.ID(), "userID", s.UserID(), "channelID", channelID)
}

// LeaveAll drops every subscription held by the connection with id connID
func (b *Broker) LeaveAll(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for channelID := range b.joins[connID] {
		b.removeLocked(connID, channelID)
	}
	delete(b.joins, connID)
}

func (b *Broker) removeLocked(connID, channelID string) {
	if room, ok := b.rooms[channelID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(b.rooms, channelID)
		}
	}
	if set, ok := b.joins[connID]; ok {
		delete(set, channelID)
		if len(set) == 0 {
			delete(b.joins, connID)
		}
	}
}

// Channels returns the channel ids the connection is subscribed to
func (b *Broker) Channels(connID string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.joins[connID]))
	for channelID := range b.joins[connID] {
		out = append(out, channelID)
	}
	return out
}

// Members returns the connection ids subscribed to channelID
func (b *Broker) Members(channelID string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, 0, len(b.rooms[channelID]))
	for connID := range b.rooms[channelID] {
		out = append(out, connID)
	}
	return out
}

// Broadcast delivers payload under event to every connection subscribed to
// channelID and returns how many sends succeeded. Membership is snapshotted
// under the read lock so concurrent Join/Leave never race delivery.
func (b *Broker) Broadcast(channelID, event string, payload any) int {
	b.mu.RLock()
	targets := make([]registry.Subscriber, 0, len(b.rooms[channelID]))
	for _, s := range b.rooms[channelID] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	delivered, failed := 0, 0
	for _, s := range targets {
		if err := s.Send(event, payload); err != nil {
			failed++
			b.logger.Debug("Broadcast delivery failed", "clientID", s.ID(), "channelID", channelID, "event", event, "error", err)
			continue
		}
		delivered++
	}

	b.metrics.Broadcast(event, delivered, failed)
	b.logger.Debug("Broadcast to channel", "channelID", channelID, "event", event, "delivered", delivered, "failed", failed)
	return delivered
}

// ValidateSend performs the structural check on a client send frame.
// It never persists anything.
func ValidateSend(req SendRequest) error {
	var missing []string
	if strings.TrimSpace(req.ChannelID) == "" {
		missing = append(missing, "channelId")
	}
	if strings.TrimSpace(req.SenderID) == "" {
		missing = append(missing, "senderId")
	}
	if strings.TrimSpace(req.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields in message payload: %s", models.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func (b *Broker) onMessageSent(_ context.Context, evt events.Event) {
	msg, ok := evt.Payload.(*models.Message)
	if !ok || msg == nil || msg.ChannelID == "" {
		b.logger.Warn("Dropping malformed message.sent event", "payload", evt.Payload)
		return
	}
	n := b.Broadcast(msg.ChannelID, models.EventMessageReceived, msg)
	b.logger.Info("Emitted message to channel", "channelID", msg.ChannelID, "messageID", msg.ID, "recipients", n)
}

func (b *Broker) onMessageEdited(_ context.Context, evt events.Event) {
	msg, ok := evt.Payload.(*models.Message)
	if !ok || msg == nil || msg.ChannelID == "" {
		return
	}
	b.Broadcast(msg.ChannelID, models.EventMessageEdited, msg)
}

func (b *Broker) onMessageDeleted(_ context.Context, evt events.Event) {
	notice, ok := evt.Payload.(models.MessageDeleted)
	if !ok || notice.ChannelID == "" {
		return
	}
	b.Broadcast(notice.ChannelID, models.EventMessageDeleted, notice)
}

func (b *Broker) onChannelRead(_ context.Context, evt events.Event) {
	read, ok := evt.Payload.(models.ChannelRead)
	if !ok || read.ChannelID == "" {
		b.logger.Warn("Dropping malformed channel.read event", "payload", evt.Payload)
		return
	}
	b.Broadcast(read.ChannelID, models.EventChannelRead, read)
}
