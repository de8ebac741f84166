package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"chat-realtime/internal/events"
	"chat-realtime/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer uses
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher is the slice of the event bus the consumer writes to
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) int
}

// NotificationConsumer turns records on the notification topic into
// notification.sent bus events. Offline targets are dropped downstream;
// every record is committed once handled, delivered or not.
type NotificationConsumer struct {
	reader MessageReader
	bus    Publisher
	logger *slog.Logger
}

func NewNotificationReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        500 * time.Millisecond,
		CommitInterval: 0,
	})
}

func NewNotificationConsumer(reader MessageReader, bus Publisher, logger *slog.Logger) *NotificationConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationConsumer{reader: reader, bus: bus, logger: logger}
}

// Run consumes until ctx is cancelled or the reader fails
func (c *NotificationConsumer) Run(ctx context.Context) error {
	c.logger.Info("Notification consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Notification consumer stopped")
				return nil
			}
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to commit notification record", "offset", msg.Offset, "error", err)
		}
	}
}

func (c *NotificationConsumer) handle(ctx context.Context, msg kafka.Message) {
	n, err := decodeNotification(msg)
	if err != nil {
		c.logger.Warn("Skipping malformed notification record", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	c.bus.Publish(ctx, events.TopicNotificationSent, n)
}

func decodeNotification(msg kafka.Message) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		return n, err
	}
	if n.UserID == "" {
		// Producers may key the record by user instead
		n.UserID = string(msg.Key)
	}
	if n.UserID == "" {
		return n, errors.New("notification has no userId")
	}
	return n, nil
}

func (c *NotificationConsumer) Close() error {
	return c.reader.Close()
}
