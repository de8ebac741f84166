package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"chat-realtime/internal/events"
	"chat-realtime/internal/models"

	"github.com/IBM/sarama"
)

const defaultMirrorQueue = 1024

var ErrMirrorQueueFull = errors.New("event mirror queue full")

// Envelope is the record written for every mirrored bus event
type Envelope struct {
	Topic       string    `json:"topic"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"publishedAt"`
}

// EventMirror copies bus events to a Kafka topic. Mirror only enqueues, so
// a slow broker never stalls the publisher; Run does the sending.
type EventMirror struct {
	producer sarama.SyncProducer
	topic    string
	queue    chan *sarama.ProducerMessage
	logger   *slog.Logger
	once     sync.Once
}

func NewEventMirror(producer sarama.SyncProducer, topic string, logger *slog.Logger) *EventMirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventMirror{
		producer: producer,
		topic:    topic,
		queue:    make(chan *sarama.ProducerMessage, defaultMirrorQueue),
		logger:   logger,
	}
}

// Mirror implements events.Mirror
func (m *EventMirror) Mirror(_ context.Context, evt events.Event) error {
	msg, err := m.encode(evt)
	if err != nil {
		return err
	}

	select {
	case m.queue <- msg:
		return nil
	default:
		return ErrMirrorQueueFull
	}
}

func (m *EventMirror) encode(evt events.Event) (*sarama.ProducerMessage, error) {
	value, err := json.Marshal(Envelope{Topic: evt.Topic, Payload: evt.Payload, PublishedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}

	msg := &sarama.ProducerMessage{
		Topic: m.topic,
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(evt.Topic)},
		},
	}
	if key := partitionKey(evt.Payload); key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	return msg, nil
}

func partitionKey(payload any) string {
	switch p := payload.(type) {
	case *models.Message:
		if p != nil {
			return p.ChannelID
		}
	case models.ChannelRead:
		return p.ChannelID
	case models.MessageDeleted:
		return p.ChannelID
	case models.Notification:
		return p.UserID
	}
	return ""
}

// Run sends queued events until ctx is done, then flushes what is left
func (m *EventMirror) Run(ctx context.Context) {
	m.logger.Info("Event mirror started", "topic", m.topic)
	for {
		select {
		case msg := <-m.queue:
			m.send(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-m.queue:
					m.send(msg)
				default:
					m.logger.Info("Event mirror stopped", "topic", m.topic)
					return
				}
			}
		}
	}
}

func (m *EventMirror) send(msg *sarama.ProducerMessage) {
	partition, offset, err := m.producer.SendMessage(msg)
	if err != nil {
		m.logger.Error("Failed to mirror event", "topic", m.topic, "error", err)
		return
	}
	m.logger.Debug("Event mirrored", "topic", m.topic, "partition", partition, "offset", offset)
}

// Close shuts the producer down. Call it after Run returned.
func (m *EventMirror) Close() error {
	var err error
	m.once.Do(func() {
		err = m.producer.Close()
	})
	return err
}
