// Package domain contains entity without logic, just meta-data
package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ConnectionID is assigned by the transport and stays stable for the lifetime of one connection.
type ConnectionID string

// NewConnectionID mints the id for a freshly upgraded socket.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// Identity is what a connection announced at login.
// LocationHint is client data passed through unexamined.
type Identity struct {
	ConnectionID ConnectionID    `json:"connectionId"`
	DisplayName  string          `json:"displayName"`
	LocationHint json.RawMessage `json:"locationHint"`
}

func NewIdentity(id ConnectionID, displayName string, hint json.RawMessage) Identity {
	return Identity{
		ConnectionID: id,
		DisplayName:  displayName,
		LocationHint: cloneRaw(hint),
	}
}

// Clone returns a copy that shares no memory with the receiver.
func (i Identity) Clone() Identity {
	i.LocationHint = cloneRaw(i.LocationHint)
	return i
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
