package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chat-realtime/internal/events"
	"chat-realtime/internal/metrics"
	"chat-realtime/internal/models"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// MessageRepository is the persistence contract every store backend meets.
// FindByID, UpdateContent and Delete return an error wrapping
// models.ErrNotFound for unknown ids. FindLast returns (nil, nil) on an
// empty channel. MarkRead must be a single bulk mutation and returns how
// many messages gained the reader.
type MessageRepository interface {
	FindByChannel(ctx context.Context, channelID string) ([]*models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
	FindLast(ctx context.Context, channelID string) (*models.Message, error)
	CountUnread(ctx context.Context, channelID, userID string) (int64, error)
	MarkRead(ctx context.Context, channelID, userID string) (int64, error)
	Search(ctx context.Context, channelID, query string, limit int) ([]*models.Message, error)
}

// Publisher is the slice of the event bus the service writes to
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) int
}

// MessageService owns message persistence and announces successful writes
// on the event bus. It never talks to connections directly.
type MessageService struct {
	repo    MessageRepository
	bus     Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewMessageService(repo MessageRepository, bus Publisher, logger *slog.Logger, m *metrics.Metrics) *MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageService{repo: repo, bus: bus, logger: logger, metrics: m}
}

// GetMessages returns a channel's messages, oldest first
func (s *MessageService) GetMessages(ctx context.Context, channelID string) ([]*models.Message, error) {
	defer s.metrics.ObserveStore("get_messages", time.Now())

	msgs, err := s.repo.FindByChannel(ctx, channelID)
	if err != nil {
		return nil, storeErr("get messages", err)
	}
	return msgs, nil
}

// SendMessage persists a new message then publishes message.sent
func (s *MessageService) SendMessage(ctx context.Context, senderID, channelID, content, senderName string) (*models.Message, error) {
	defer s.metrics.ObserveStore("send_message", time.Now())

	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(channelID) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: channelId, senderId and content are required", models.ErrValidation)
	}

	msg := &models.Message{
		ChannelID:  channelID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Edited:     false,
		ReadBy:     []string{},
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		s.logger.Error("Failed to persist message", "channelID", channelID, "senderID", senderID, "error", err)
		return nil, storeErr("send message", err)
	}

	s.logger.Debug("Message stored", "messageID", msg.ID, "channelID", channelID, "senderID", senderID)
	s.bus.Publish(ctx, events.TopicMessageSent, msg.Clone())
	return msg, nil
}

// EditMessage replaces the content of a message owned by userID.
// The edited flag is set and never cleared.
func (s *MessageService) EditMessage(ctx context.Context, messageID, content, userID string) (*models.Message, error) {
	defer s.metrics.ObserveStore("edit_message", time.Now())

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", models.ErrValidation)
	}
	if _, err := s.ownedMessage(ctx, messageID, userID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateContent(ctx, messageID, content)
	if err != nil {
		return nil, storeErr("edit message", err)
	}

	s.bus.Publish(ctx, events.TopicMessageEdited, updated.Clone())
	return updated, nil
}

// DeleteMessage permanently removes a message owned by userID
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, userID string) error {
	defer s.metrics.ObserveStore("delete_message", time.Now())

	msg, err := s.ownedMessage(ctx, messageID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, messageID); err != nil {
		return storeErr("delete message", err)
	}

	s.bus.Publish(ctx, events.TopicMessageDeleted, models.MessageDeleted{ID: msg.ID, ChannelID: msg.ChannelID})
	return nil
}

// FindLast returns the newest message of a channel, or nil
func (s *MessageService) FindLast(ctx context.Context, channelID string) (*models.Message, error) {
	defer s.metrics.ObserveStore("find_last", time.Now())

	msg, err := s.repo.FindLast(ctx, channelID)
	if err != nil {
		return nil, storeErr("find last message", err)
	}
	return msg, nil
}

// CountUnread counts messages in channelID whose readBy lacks userID
func (s *MessageService) CountUnread(ctx context.Context, channelID, userID string) (int64, error) {
	defer s.metrics.ObserveStore("count_unread", time.Now())

	n, err := s.repo.CountUnread(ctx, channelID, userID)
	if err != nil {
		return 0, storeErr("count unread", err)
	}
	return n, nil
}

// MarkRead adds userID to readBy of every unread message in the channel in
// one bulk mutation, then publishes channel.read. When nothing changed the
// call is a no-op and publishes nothing.
func (s *MessageService) MarkRead(ctx context.Context, channelID, userID string) (int64, error) {
	defer s.metrics.ObserveStore("mark_read", time.Now())

	if channelID == "" || userID == "" {
		return 0, fmt.Errorf("%w: channelId and userId are required", models.ErrValidation)
	}

	changed, err := s.repo.MarkRead(ctx, channelID, userID)
	if err != nil {
		return 0, storeErr("mark read", err)
	}
	if changed == 0 {
		return 0, nil
	}

	s.bus.Publish(ctx, events.TopicChannelRead, models.ChannelRead{ChannelID: channelID, UserID: userID})
	return changed, nil
}

// QueryMessages finds messages whose content contains query, ignoring case,
// newest first, at most limit results
func (s *MessageService) QueryMessages(ctx context.Context, channelID, query string, limit int) ([]*models.Message, error) {
	defer s.metrics.ObserveStore("query_messages", time.Now())

	msgs, err := s.repo.Search(ctx, channelID, query, ClampLimit(limit))
	if err != nil {
		return nil, storeErr("query messages", err)
	}
	return msgs, nil
}

// ClampLimit bounds a search limit to [1, MaxSearchLimit]
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

func (s *MessageService) ownedMessage(ctx context.Context, messageID, userID string) (*models.Message, error) {
	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("message %s: %w", messageID, models.ErrNotFound)
		}
		return nil, storeErr("find message", err)
	}
	if msg.SenderID != userID {
		return nil, fmt.Errorf("user %s cannot modify message %s: %w", userID, messageID, models.ErrAuthorization)
	}
	return msg, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrStore) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %v", op, models.ErrStore, err)
}
