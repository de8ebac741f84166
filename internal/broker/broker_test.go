package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chat-realtime/internal/events"
	"chat-realtime/internal/models"
	"chat-realtime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	event   string
	payload any
}

type mockConn struct {
	id     string
	userID string
	fail   bool

	mu     sync.Mutex
	frames []frame
}

func (m *mockConn) ID() string     { return m.id }
func (m *mockConn) UserID() string { return m.userID }
func (m *mockConn) Close() error   { return nil }

func (m *mockConn) Send(event string, payload any) error {
	if m.fail {
		return errors.New("client disconnected")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, frame{event, payload})
	return nil
}

func (m *mockConn) received() []frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]frame(nil), m.frames...)
}

func newTestBroker() (*Broker, *events.Bus) {
	bus := events.NewBus(logger.Discard())
	return New(bus, logger.Discard(), nil), bus
}

func TestNewSubscribesOncePerTopic(t *testing.T) {
	_, bus := newTestBroker()
	assert.Equal(t, 1, bus.SubscriberCount(events.TopicMessageSent))
	assert.Equal(t, 1, bus.SubscriberCount(events.TopicChannelRead))
}

func TestJoinLeaveMembership(t *testing.T) {
	b, _ := newTestBroker()
	c1 := &mockConn{id: "c1", userID: "u1"}
	c2 := &mockConn{id: "c2", userID: "u2"}

	b.Join(c1, "room")
	b.Join(c2, "room")
	b.Join(c1, "other")

	assert.ElementsMatch(t, []string{"c1", "c2"}, b.Members("room"))
	assert.ElementsMatch(t, []string{"room", "other"}, b.Channels("c1"))

	b.Leave(c1, "room")
	assert.Equal(t, []string{"c2"}, b.Members("room"))
	assert.Equal(t, []string{"other"}, b.Channels("c1"))

	b.LeaveAll("c1")
	assert.Empty(t, b.Channels("c1"))
	assert.Empty(t, b.Members("other"))
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	b, _ := newTestBroker()
	joined := &mockConn{id: "c2", userID: "u2"}
	outsider := &mockConn{id: "c3", userID: "u3"}
	b.Join(joined, "c1")
	b.Join(outsider, "elsewhere")

	msg := &models.Message{ID: "m1", ChannelID: "c1", Content: "hi"}
	n := b.Broadcast("c1", models.EventMessageReceived, msg)

	assert.Equal(t, 1, n)
	require.Len(t, joined.received(), 1)
	assert.Equal(t, models.EventMessageReceived, joined.received()[0].event)
	assert.Same(t, msg, joined.received()[0].payload)
	assert.Empty(t, outsider.received())
}

func TestBroadcastSkipsFailingConnections(t *testing.T) {
	b, _ := newTestBroker()
	ok := &mockConn{id: "ok", userID: "u1"}
	broken := &mockConn{id: "broken", userID: "u2", fail: true}
	b.Join(ok, "c1")
	b.Join(broken, "c1")

	assert.Equal(t, 1, b.Broadcast("c1", models.EventMessageReceived, "x"))
	assert.Len(t, ok.received(), 1)
}

func TestMessageSentEventIsRebroadcast(t *testing.T) {
	b, bus := newTestBroker()
	c2 := &mockConn{id: "c2", userID: "u2"}
	never := &mockConn{id: "c9", userID: "u9"}
	b.Join(c2, "c1")

	msg := &models.Message{ID: "m1", ChannelID: "c1", SenderID: "u1", Content: "hi"}
	bus.Publish(context.Background(), events.TopicMessageSent, msg)

	got := c2.received()
	require.Len(t, got, 1)
	assert.Equal(t, models.EventMessageReceived, got[0].event)
	assert.Equal(t, msg, got[0].payload)
	assert.Empty(t, never.received())
}

func TestChannelReadEventIsRebroadcast(t *testing.T) {
	b, bus := newTestBroker()
	c := &mockConn{id: "c", userID: "u2"}
	b.Join(c, "c1")

	bus.Publish(context.Background(), events.TopicChannelRead, models.ChannelRead{ChannelID: "c1", UserID: "u1"})

	got := c.received()
	require.Len(t, got, 1)
	assert.Equal(t, models.EventChannelRead, got[0].event)
	assert.Equal(t, models.ChannelRead{ChannelID: "c1", UserID: "u1"}, got[0].payload)
}

func TestEditAndDeleteEventsAreRebroadcast(t *testing.T) {
	b, bus := newTestBroker()
	c := &mockConn{id: "c", userID: "u2"}
	b.Join(c, "c1")

	bus.Publish(context.Background(), events.TopicMessageEdited, &models.Message{ID: "m1", ChannelID: "c1", Edited: true})
	bus.Publish(context.Background(), events.TopicMessageDeleted, models.MessageDeleted{ID: "m1", ChannelID: "c1"})

	got := c.received()
	require.Len(t, got, 2)
	assert.Equal(t, models.EventMessageEdited, got[0].event)
	assert.Equal(t, models.EventMessageDeleted, got[1].event)
}

func TestMalformedEventsAreIgnored(t *testing.T) {
	b, bus := newTestBroker()
	c := &mockConn{id: "c", userID: "u2"}
	b.Join(c, "c1")

	bus.Publish(context.Background(), events.TopicMessageSent, "not a message")
	bus.Publish(context.Background(), events.TopicMessageSent, &models.Message{ID: "m1"})
	bus.Publish(context.Background(), events.TopicChannelRead, 42)

	assert.Empty(t, c.received())
}

func TestValidateSend(t *testing.T) {
	tests := []struct {
		name string
		req  SendRequest
		ok   bool
	}{
		{"complete", SendRequest{ChannelID: "c1", SenderID: "u1", Content: "hi"}, true},
		{"missing channel", SendRequest{SenderID: "u1", Content: "hi"}, false},
		{"missing sender", SendRequest{ChannelID: "c1", Content: "hi"}, false},
		{"blank content", SendRequest{ChannelID: "c1", SenderID: "u1", Content: "   "}, false},
		{"empty", SendRequest{}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSend(tt.req)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestConcurrentJoinLeaveBroadcast(t *testing.T) {
	b, _ := newTestBroker()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		i := i
		c := &mockConn{id: fmt.Sprintf("c%d", i), userID: fmt.Sprintf("u%d", i)}
		wg.Add(3)
		go func() { defer wg.Done(); b.Join(c, "busy") }()
		go func() { defer wg.Done(); b.Broadcast("busy", models.EventMessageReceived, i) }()
		go func() { defer wg.Done(); b.Leave(c, "busy") }()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(b.Members("busy")), 50)
}
