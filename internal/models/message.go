package models

import (
	"slices"
	"time"
)

/** --------------------ENTITIES-------------------- */
// Message is a single chat message inside a channel
type Message struct {
	ID         string    `json:"id" bson:"-"`
	ChannelID  string    `json:"channelId" bson:"channelId"`
	SenderID   string    `json:"senderId" bson:"senderId"`
	SenderName string    `json:"senderName,omitempty" bson:"senderName,omitempty"`
	Content    string    `json:"content" bson:"content"`
	Edited     bool      `json:"edited" bson:"edited"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
	ReadBy     []string  `json:"readBy" bson:"readBy"`
}

// IsReadBy reports whether userID has already read the message
func (m *Message) IsReadBy(userID string) bool {
	return slices.Contains(m.ReadBy, userID)
}

// Clone returns a deep copy so callers can't mutate shared readBy slices
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	cp := *m
	cp.ReadBy = slices.Clone(m.ReadBy)
	if cp.ReadBy == nil {
		cp.ReadBy = []string{}
	}
	return &cp
}

// ChannelRead is the notice broadcast when a user reads a channel
type ChannelRead struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
}

// MessageDeleted is the notice broadcast when a message is removed
type MessageDeleted struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
}

// Notification is a payload targeted at a single user
type Notification struct {
	UserID  string `json:"userId"`
	Payload any    `json:"payload"`
}

/** -------------------- DTOs -------------------- */
// Request
type SendMessageRequest struct {
	Content    string `json:"content" binding:"required"`
	SenderName string `json:"senderName"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type NotificationRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Payload any    `json:"payload"`
}

// Response
type UnreadResponse struct {
	ChannelID string `json:"channelId"`
	Unread    int64  `json:"unread"`
}

type MarkReadResponse struct {
	ChannelID string `json:"channelId"`
	Marked    int64  `json:"marked"`
}

type NotificationResponse struct {
	Delivered bool `json:"delivered"`
}

type PresenceResponse struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type OnlineUsersResponse struct {
	Users []string `json:"users"`
}
