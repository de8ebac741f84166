package websocket

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Error codes carried by outbound "error" frames
const (
	CodeUnknownEvent   = "UNKNOWN_EVENT"
	CodeInvalidMessage = "INVALID_MESSAGE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
)

var errMissingChannel = errors.New("channelId is required")

// Frame is the envelope of every inbound client message
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundFrame is the envelope of every message pushed to a client
type OutboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ConnectData struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type channelData struct {
	ChannelID string `json:"channelId"`
}

func encodeFrame(event string, payload any) ([]byte, error) {
	return json.Marshal(OutboundFrame{Event: event, Data: payload})
}

// channelID accepts either a bare JSON string or {"channelId": "..."}
func (f Frame) channelID() (string, error) {
	data := bytes.TrimSpace(f.Data)
	if len(data) == 0 {
		return "", errMissingChannel
	}

	var id string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &id); err != nil {
			return "", err
		}
	} else {
		var obj channelData
		if err := json.Unmarshal(data, &obj); err != nil {
			return "", err
		}
		id = obj.ChannelID
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", errMissingChannel
	}
	return id, nil
}
