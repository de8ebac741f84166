// Package events is the in-process publish/subscribe hub that decouples the
// message write path from live delivery. Delivery is synchronous, ordered by
// registration, non-durable and never replayed to late subscribers.
package events

import (
	"context"
	"log/slog"
	"sync"
)

// Topic names published by the message service and the notification API
const (
	TopicMessageSent      = "message.sent"
	TopicMessageEdited    = "message.edited"
	TopicMessageDeleted   = "message.deleted"
	TopicChannelRead      = "channel.read"
	TopicNotificationSent = "notification.sent"
)

// Event is what a handler receives
type Event struct {
	Topic   string
	Payload any
}

type Handler func(ctx context.Context, evt Event)

// Mirror receives every published event after local handlers ran.
// Implementations must not block for long; errors are logged and dropped.
type Mirror interface {
	Mirror(ctx context.Context, evt Event) error
}

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	mirrors  []Mirror
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe appends handler to the topic's subscriber list
func (b *Bus) Subscribe(topic string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// AddMirror registers an outbound sink for all topics
func (b *Bus) AddMirror(m Mirror) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mirrors = append(b.mirrors, m)
}

// Publish runs every handler subscribed to topic at the time of the call,
// in registration order, on the caller's goroutine. It returns the number of
// handlers invoked.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) int {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[topic]...)
	mirrors := append([]Mirror(nil), b.mirrors...)
	b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, h := range handlers {
		b.invoke(ctx, h, evt)
	}

	for _, m := range mirrors {
		if err := m.Mirror(ctx, evt); err != nil {
			b.logger.Warn("Event mirror failed", "topic", topic, "error", err)
		}
	}

	b.logger.Debug("Event published", "topic", topic, "handlers", len(handlers))
	return len(handlers)
}

// SubscriberCount returns how many handlers are attached to topic
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

func (b *Bus) invoke(ctx context.Context, h Handler, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked", "topic", evt.Topic, "panic", r)
		}
	}()
	h(ctx, evt)
}
