package core

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/callhub/internal/domain"
)

type EventType string

// Inbound events.
const (
	EventLogin       EventType = "login"
	EventChatMessage EventType = "chat-message"
	EventRoomCreate  EventType = "room-create"
	EventRoomJoin    EventType = "room-join"
	EventRoomLeave   EventType = "room-leave"
	// EventDisconnect is produced by the transport, never sent by clients.
	EventDisconnect EventType = "disconnect"
)

// Outbound events. EventChatMessage is used in both directions.
const (
	EventOnlineUsers         EventType = "online-users"
	EventVideoRooms          EventType = "video-rooms"
	EventVideoRoomInit       EventType = "video-room-init"
	EventVideoCallDisconnect EventType = "video-call-disconnect"
	EventUserDisconnected    EventType = "user-disconnected"
)

// Envelope is the wire shape of every message in both directions.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound is one message addressed to a fixed recipient list.
// Recipients are resolved when the handler runs, not when the frame is sent.
type Outbound struct {
	Type       EventType
	Recipients []domain.ConnectionID
	Payload    any
}

// Encode renders the envelope. A nil Payload omits the field.
func Encode(out Outbound) (Frame, error) {
	env := Envelope{Type: out.Type}
	if out.Payload != nil {
		raw, err := json.Marshal(out.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", out.Type, err)
		}
		env.Payload = raw
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", out.Type, err)
	}
	return data, nil
}
