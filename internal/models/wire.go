package models

// Client-facing event names, inbound and outbound
const (
	// client -> server
	EventJoinChannel  = "joinChannel"
	EventLeaveChannel = "leaveChannel"
	EventSendMessage  = "sendMessage"
	EventMarkRead     = "markRead"
	EventPing         = "ping"

	// server -> client
	EventConnected       = "connected"
	EventMessageReceived = "messageReceived"
	EventMessageEdited   = "messageEdited"
	EventMessageDeleted  = "messageDeleted"
	EventChannelRead     = "channelRead"
	EventNotification    = "notification"
	EventPong            = "pong"
	EventError           = "error"
)
