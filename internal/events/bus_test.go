package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chat-realtime/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (m *recordingMirror) Mirror(_ context.Context, evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

func TestPublishInvokesHandlersInRegistrationOrder(t *testing.T) {
	bus := NewBus(logger.Discard())
	var order []int

	for i := 1; i <= 3; i++ {
		i := i
		bus.Subscribe(TopicMessageSent, func(_ context.Context, evt Event) {
			assert.Equal(t, TopicMessageSent, evt.Topic)
			order = append(order, i)
		})
	}

	n := bus.Publish(context.Background(), TopicMessageSent, "payload")
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPublishOnlyReachesMatchingTopic(t *testing.T) {
	bus := NewBus(logger.Discard())
	var got []any
	bus.Subscribe(TopicChannelRead, func(_ context.Context, evt Event) {
		got = append(got, evt.Payload)
	})

	assert.Equal(t, 0, bus.Publish(context.Background(), TopicMessageSent, "ignored"))
	assert.Equal(t, 1, bus.Publish(context.Background(), TopicChannelRead, "read"))
	assert.Equal(t, []any{"read"}, got)
}

func TestLateSubscriberSeesNoReplay(t *testing.T) {
	bus := NewBus(logger.Discard())
	bus.Publish(context.Background(), TopicMessageSent, "early")

	var got []any
	bus.Subscribe(TopicMessageSent, func(_ context.Context, evt Event) {
		got = append(got, evt.Payload)
	})
	assert.Empty(t, got)

	bus.Publish(context.Background(), TopicMessageSent, "late")
	assert.Equal(t, []any{"late"}, got)
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(logger.Discard())
	called := false
	bus.Subscribe(TopicMessageSent, func(context.Context, Event) { panic("boom") })
	bus.Subscribe(TopicMessageSent, func(context.Context, Event) { called = true })

	require.NotPanics(t, func() {
		bus.Publish(context.Background(), TopicMessageSent, nil)
	})
	assert.True(t, called)
}

func TestMirrorReceivesEveryTopic(t *testing.T) {
	bus := NewBus(logger.Discard())
	m := &recordingMirror{err: errors.New("broker down")}
	bus.AddMirror(m)

	bus.Publish(context.Background(), TopicMessageSent, 1)
	bus.Publish(context.Background(), TopicChannelRead, 2)

	require.Len(t, m.events, 2)
	assert.Equal(t, TopicMessageSent, m.events[0].Topic)
	assert.Equal(t, TopicChannelRead, m.events[1].Topic)
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	bus := NewBus(logger.Discard())
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			bus.Subscribe(TopicMessageSent, func(context.Context, Event) {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), TopicMessageSent, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, bus.SubscriberCount(TopicMessageSent))
	before := count
	bus.Publish(context.Background(), TopicMessageSent, nil)
	assert.Equal(t, before+50, count)
}
