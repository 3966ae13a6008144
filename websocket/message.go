package websocket

import (
	"time"

	"zonetrack/models"
)

// Message types pushed to connected clients.
const (
	MessageTypeZoneEvent = "zone_event"
	MessageTypeWelcome   = "welcome"
	MessageTypeError     = "error"
	MessageTypePong      = "pong"
)

// Client request types.
const (
	RequestTypeSubscribe   = "subscribe"
	RequestTypeUnsubscribe = "unsubscribe"
	RequestTypePing        = "ping"
)

// Message is the envelope for everything the hub pushes to a client.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Request is the envelope for everything a client sends to the hub.
type Request struct {
	Type      string   `json:"type"`
	DeviceIDs []string `json:"deviceIds,omitempty"`
	ZoneIDs   []string `json:"zoneIds,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WelcomeData is the payload of the first message after a connect.
type WelcomeData struct {
	ConnectionID string `json:"connectionId"`
	ServerTime   time.Time `json:"serverTime"`
}

func newZoneEventMessage(event models.ZoneEvent) Message {
	return Message{
		Type:      MessageTypeZoneEvent,
		Data:      event,
		Timestamp: time.Now(),
	}
}
