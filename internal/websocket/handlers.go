package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"chat-realtime/internal/broker"
	"chat-realtime/internal/models"

	"github.com/gorilla/websocket"
)

// newUpgrader accepts requests without an Origin header (non-browser
// clients), any origin in allowed, and localhost during development.
func newUpgrader(allowed []string) websocket.Upgrader {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[strings.TrimSpace(o)] = struct{}{}
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := origins["*"]; ok {
				return true
			}
			if _, ok := origins[origin]; ok {
				return true
			}
			return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
		},
	}
}

// handleFrame routes one inbound frame. Every failure is reported to the
// client as an error frame; the connection stays open.
func (c *Client) handleFrame(raw []byte) {
	if !c.limiter.Allow() {
		c.hub.metrics.InboundRateLimited()
		c.sendError(CodeRateLimited, "too many messages, slow down")
		return
	}

	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
		c.logger.Debug("Failed to unmarshal frame", "error", err)
		c.sendError(CodeInvalidMessage, "invalid message format")
		return
	}

	switch frame.Event {
	case models.EventJoinChannel:
		c.handleJoin(frame)
	case models.EventLeaveChannel:
		c.handleLeave(frame)
	case models.EventSendMessage:
		c.handleSend(frame)
	case models.EventMarkRead:
		c.handleMarkRead(frame)
	case models.EventPing:
		c.Send(models.EventPong, frame.Data)
	default:
		c.logger.Debug("Unknown event", "event", frame.Event)
		c.sendError(CodeUnknownEvent, "unknown event: "+frame.Event)
	}
}

func (c *Client) handleJoin(frame Frame) {
	channelID, err := frame.channelID()
	if err != nil {
		c.sendError(CodeInvalidMessage, err.Error())
		return
	}
	c.hub.broker.Join(c, channelID)
	c.logger.Info("Client joined channel", "channelID", channelID)
}

func (c *Client) handleLeave(frame Frame) {
	channelID, err := frame.channelID()
	if err != nil {
		c.sendError(CodeInvalidMessage, err.Error())
		return
	}
	c.hub.broker.Leave(c, channelID)
	c.logger.Info("Client left channel", "channelID", channelID)
}

// handleSend only checks the frame's shape. Messages are persisted and
// fanned out through the REST surface and the event bus.
func (c *Client) handleSend(frame Frame) {
	var req broker.SendRequest
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			c.sendError(CodeInvalidMessage, "invalid message payload")
			return
		}
	}
	if err := broker.ValidateSend(req); err != nil {
		c.sendError(CodeInvalidMessage, err.Error())
		return
	}
	c.logger.Info("Message received", "channelID", req.ChannelID, "senderID", req.SenderID)
}

func (c *Client) handleMarkRead(frame Frame) {
	channelID, err := frame.channelID()
	if err != nil {
		c.sendError(CodeInvalidMessage, err.Error())
		return
	}

	changed, err := c.hub.messages.MarkRead(c.ctx, channelID, c.userID)
	if err != nil {
		c.logger.Error("Failed to mark channel read", "channelID", channelID, "error", err)
		if errors.Is(err, models.ErrValidation) {
			c.sendError(CodeInvalidMessage, err.Error())
		} else {
			c.sendError(CodeInternal, "failed to mark channel read")
		}
		return
	}
	c.logger.Debug("Channel marked read", "channelID", channelID, "changed", changed)
}
