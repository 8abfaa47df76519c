package orch

import (
	"encoding/json"

	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
)

// Event is one inbound event tagged with the connection it arrived on.
// The set of implementations is closed; Handle switches over all of them.
type Event interface {
	Conn() domain.ConnectionID
	Kind() core.EventType
}

type Login struct {
	From         domain.ConnectionID
	DisplayName  string
	LocationHint json.RawMessage
}

type ChatMessage struct {
	From      domain.ConnectionID
	MessageID string
	Receiver  domain.ConnectionID
	// Content is relayed as received.
	Content json.RawMessage
}

type RoomCreate struct {
	From       domain.ConnectionID
	Rendezvous domain.RendezvousID
	NewRoomID  domain.RoomID
}

type RoomJoin struct {
	From       domain.ConnectionID
	RoomID     domain.RoomID
	Rendezvous domain.RendezvousID
}

type RoomLeave struct {
	From   domain.ConnectionID
	RoomID domain.RoomID
}

// Disconnect comes from the transport once the connection's read loop has ended.
type Disconnect struct {
	From domain.ConnectionID
}

func (e Login) Conn() domain.ConnectionID       { return e.From }
func (e ChatMessage) Conn() domain.ConnectionID { return e.From }
func (e RoomCreate) Conn() domain.ConnectionID  { return e.From }
func (e RoomJoin) Conn() domain.ConnectionID    { return e.From }
func (e RoomLeave) Conn() domain.ConnectionID   { return e.From }
func (e Disconnect) Conn() domain.ConnectionID  { return e.From }

func (Login) Kind() core.EventType       { return core.EventLogin }
func (ChatMessage) Kind() core.EventType { return core.EventChatMessage }
func (RoomCreate) Kind() core.EventType  { return core.EventRoomCreate }
func (RoomJoin) Kind() core.EventType    { return core.EventRoomJoin }
func (RoomLeave) Kind() core.EventType   { return core.EventRoomLeave }
func (Disconnect) Kind() core.EventType  { return core.EventDisconnect }

// Outbound payloads.

type ChatPayload struct {
	SenderConnectionID domain.ConnectionID `json:"senderConnectionId"`
	Content            json.RawMessage     `json:"content"`
	MessageID          string              `json:"messageId"`
}

type RoomInitPayload struct {
	NewParticipantRendezvousID domain.RendezvousID `json:"newParticipantRendezvousId"`
}
