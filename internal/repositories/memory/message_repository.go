// Package memory is an in-process message store used for development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"chat-realtime/internal/models"

	"github.com/google/uuid"
)

type entry struct {
	msg   *models.Message
	lower string // lowercased content for substring search
}

type MessageRepository struct {
	mu       sync.RWMutex
	byID     map[string]*entry
	channels map[string][]*entry // insertion order == createdAt order
	now      func() time.Time
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		byID:     make(map[string]*entry),
		channels: make(map[string][]*entry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *MessageRepository) FindByChannel(_ context.Context, channelID string) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.channels[channelID]
	out := make([]*models.Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.msg.Clone())
	}
	return out, nil
}

func (r *MessageRepository) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last := r.lastLocked(msg.ChannelID); last != nil && !now.After(last.msg.CreatedAt) {
		// keep createdAt strictly increasing within a channel
		now = last.msg.CreatedAt.Add(time.Microsecond)
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if msg.ReadBy == nil {
		msg.ReadBy = []string{}
	}

	e := &entry{msg: msg.Clone(), lower: strings.ToLower(msg.Content)}
	r.byID[msg.ID] = e
	r.channels[msg.ChannelID] = append(r.channels[msg.ChannelID], e)
	return nil
}

func (r *MessageRepository) FindByID(_ context.Context, id string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	return e.msg.Clone(), nil
}

func (r *MessageRepository) UpdateContent(_ context.Context, id, content string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	e.msg.Content = content
	e.msg.Edited = true
	e.msg.UpdatedAt = r.now()
	e.lower = strings.ToLower(content)
	return e.msg.Clone(), nil
}

func (r *MessageRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("message %s: %w", id, models.ErrNotFound)
	}
	delete(r.byID, id)

	ch := e.msg.ChannelID
	r.channels[ch] = slices.DeleteFunc(r.channels[ch], func(x *entry) bool { return x == e })
	if len(r.channels[ch]) == 0 {
		delete(r.channels, ch)
	}
	return nil
}

func (r *MessageRepository) FindLast(_ context.Context, channelID string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e := r.lastLocked(channelID); e != nil {
		return e.msg.Clone(), nil
	}
	return nil, nil
}

func (r *MessageRepository) CountUnread(_ context.Context, channelID, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, e := range r.channels[channelID] {
		if !e.msg.IsReadBy(userID) {
			n++
		}
	}
	return n, nil
}

// MarkRead holds the write lock for the whole sweep so a concurrent Create
// lands either entirely before or entirely after it.
func (r *MessageRepository) MarkRead(_ context.Context, channelID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for _, e := range r.channels[channelID] {
		if !e.msg.IsReadBy(userID) {
			e.msg.ReadBy = append(e.msg.ReadBy, userID)
			changed++
		}
	}
	return changed, nil
}

func (r *MessageRepository) Search(_ context.Context, channelID, query string, limit int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	entries := r.channels[channelID]
	out := make([]*models.Message, 0, min(limit, len(entries)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		if strings.Contains(entries[i].lower, needle) {
			out = append(out, entries[i].msg.Clone())
		}
	}
	return out, nil
}

func (r *MessageRepository) lastLocked(channelID string) *entry {
	entries := r.channels[channelID]
	if len(entries) == 0 {
		return nil
	}
	return entries[len(entries)-1]
}
