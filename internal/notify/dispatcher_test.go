package notify

import (
	"context"
	"errors"
	"testing"

	"chat-realtime/internal/events"
	"chat-realtime/internal/models"
	"chat-realtime/internal/registry"
	"chat-realtime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentFrame struct {
	event   string
	payload any
}

type stubConn struct {
	id, userID string
	err        error
	sent       []sentFrame
}

func (s *stubConn) ID() string     { return s.id }
func (s *stubConn) UserID() string { return s.userID }
func (s *stubConn) Close() error   { return nil }
func (s *stubConn) Send(event string, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentFrame{event, payload})
	return nil
}

func setup() (*Dispatcher, *registry.Registry, *events.Bus) {
	reg := registry.New(logger.Discard(), nil)
	bus := events.NewBus(logger.Discard())
	return NewDispatcher(reg, bus, logger.Discard(), nil), reg, bus
}

func TestSendNotificationToOnlineUser(t *testing.T) {
	d, reg, _ := setup()
	c := &stubConn{id: "c1", userID: "u1"}
	reg.Register("u1", c)

	payload := map[string]any{"title": "hello"}
	assert.True(t, d.SendNotification("u1", payload))

	require.Len(t, c.sent, 1)
	assert.Equal(t, models.EventNotification, c.sent[0].event)
	assert.Equal(t, payload, c.sent[0].payload)
}

func TestSendNotificationToOfflineUserIsDropped(t *testing.T) {
	d, _, _ := setup()
	assert.False(t, d.SendNotification("ghost", "anything"))
}

func TestSendNotificationGoesToLatestConnection(t *testing.T) {
	d, reg, _ := setup()
	old := &stubConn{id: "c1", userID: "u1"}
	latest := &stubConn{id: "c2", userID: "u1"}
	reg.Register("u1", old)
	reg.Register("u1", latest)

	d.SendNotification("u1", "ping")

	assert.Empty(t, old.sent)
	assert.Len(t, latest.sent, 1)
}

func TestSendNotificationDeliveryFailure(t *testing.T) {
	d, reg, _ := setup()
	reg.Register("u1", &stubConn{id: "c1", userID: "u1", err: errors.New("buffer full")})
	assert.False(t, d.SendNotification("u1", "x"))
}

func TestNotificationSentEventIsDispatched(t *testing.T) {
	_, reg, bus := setup()
	c := &stubConn{id: "c1", userID: "u1"}
	reg.Register("u1", c)

	n := models.Notification{UserID: "u1", Payload: "invite"}
	bus.Publish(context.Background(), events.TopicNotificationSent, n)
	bus.Publish(context.Background(), events.TopicNotificationSent, "garbage")

	require.Len(t, c.sent, 1)
	assert.Equal(t, n, c.sent[0].payload)
}
