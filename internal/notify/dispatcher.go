// Package notify delivers payloads straight to one user's live connection.
// Delivery is best-effort: offline targets are dropped, never queued.
package notify

import (
	"context"
	"log/slog"

	"chat-realtime/internal/events"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/models"
	"chat-realtime/internal/registry"
)

type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher wires the dispatcher and, when bus is non-nil, subscribes it
// to notification.sent so writers can notify without a direct reference.
func NewDispatcher(reg *registry.Registry, bus *events.Bus, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{registry: reg, logger: logger, metrics: m}
	if bus != nil {
		bus.Subscribe(events.TopicNotificationSent, d.onNotification)
	}
	return d
}

// SendNotification pushes payload to userID under the "notification" event.
// It reports whether a live connection accepted it.
func (d *Dispatcher) SendNotification(userID string, payload any) bool {
	client, ok := d.registry.Lookup(userID)
	if !ok {
		d.metrics.NotificationDropped()
		d.logger.Warn("Attempted to notify user, but they are not connected", "userID", userID)
		return false
	}

	if err := client.Send(models.EventNotification, payload); err != nil {
		d.metrics.NotificationDropped()
		d.logger.Warn("Notification delivery failed", "userID", userID, "clientID", client.ID(), "error", err)
		return false
	}

	d.metrics.NotificationDelivered()
	d.logger.Info("Notification sent to user", "userID", userID, "clientID", client.ID())
	return true
}

func (d *Dispatcher) onNotification(_ context.Context, evt events.Event) {
	n, ok := evt.Payload.(models.Notification)
	if !ok || n.UserID == "" {
		d.logger.Warn("Dropping malformed notification.sent event", "payload", evt.Payload)
		return
	}
	d.SendNotification(n.UserID, n)
}
