package ws

import (
	"encoding/json"
	"time"
)

// Event types - Client → Server
const (
	EventTypePing = "ping"
)

// Event types - Server → Client
const (
	EventTypeNeighborRequest  = "news.neighbor_request"
	EventTypeNeighborAccepted = "news.neighbor_accepted"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Server → Client payloads ---

type NeighborRequestPayload struct {
	FromUrlname    string  `json:"from_urlname"`
	FromUsername   string  `json:"from_username"`
	FromUserPic    *string `json:"from_user_pic"`
	RequestMessage string  `json:"request_message"`
}

type NeighborAcceptedPayload struct {
	Urlname  string  `json:"urlname"`
	Username string  `json:"username"`
	UserPic  *string `json:"user_pic"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
