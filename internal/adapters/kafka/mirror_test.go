package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"chat-realtime/internal/events"
	"chat-realtime/internal/models"
	"chat-realtime/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMirrorSendsEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env struct {
			Topic   string         `json:"topic"`
			Payload models.Message `json:"payload"`
		}
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.Topic != events.TopicMessageSent || env.Payload.ChannelID != "c1" {
			return errors.New("unexpected envelope: " + string(val))
		}
		return nil
	})
	producer.ExpectSendMessageAndSucceed()

	mirror := NewEventMirror(producer, "chat.events", logger.Discard())
	ctx := context.Background()
	require.NoError(t, mirror.Mirror(ctx, events.Event{
		Topic:   events.TopicMessageSent,
		Payload: &models.Message{ID: "m1", ChannelID: "c1", Content: "hi"},
	}))
	require.NoError(t, mirror.Mirror(ctx, events.Event{
		Topic:   events.TopicChannelRead,
		Payload: models.ChannelRead{ChannelID: "c1", UserID: "u1"},
	}))

	stopped, cancel := context.WithCancel(ctx)
	cancel()
	mirror.Run(stopped)

	require.NoError(t, mirror.Close())
}

func TestEventMirrorDropsWhenQueueFull(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	mirror := NewEventMirror(producer, "chat.events", logger.Discard())
	mirror.queue = make(chan *sarama.ProducerMessage, 1)

	evt := events.Event{Topic: events.TopicChannelRead, Payload: models.ChannelRead{ChannelID: "c1", UserID: "u1"}}
	require.NoError(t, mirror.Mirror(context.Background(), evt))
	assert.ErrorIs(t, mirror.Mirror(context.Background(), evt), ErrMirrorQueueFull)

	<-mirror.queue
	require.NoError(t, mirror.Close())
}

func TestEventMirrorOnBus(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	mirror := NewEventMirror(producer, "chat.events", logger.Discard())
	bus := events.NewBus(logger.Discard())
	bus.AddMirror(mirror)

	bus.Publish(context.Background(), events.TopicMessageDeleted, models.MessageDeleted{ID: "m1", ChannelID: "c7"})

	require.Len(t, mirror.queue, 1)
	msg := <-mirror.queue
	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "c7", string(key))
	assert.Equal(t, "chat.events", msg.Topic)
	require.NoError(t, mirror.Close())
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "c1", partitionKey(&models.Message{ChannelID: "c1"}))
	assert.Equal(t, "c2", partitionKey(models.ChannelRead{ChannelID: "c2"}))
	assert.Equal(t, "u1", partitionKey(models.Notification{UserID: "u1"}))
	assert.Empty(t, partitionKey((*models.Message)(nil)))
	assert.Empty(t, partitionKey("other"))
}
