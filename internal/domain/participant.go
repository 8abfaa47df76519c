package domain

// RendezvousID is minted by the external media-negotiation service.
// The hub only forwards it.
type RendezvousID string

// Participant is one seat in a room.
// DisplayName is copied at join time, not looked up later.
type Participant struct {
	ConnectionID ConnectionID `json:"connectionId"`
	DisplayName  string       `json:"displayName"`
	RendezvousID RendezvousID `json:"rendezvousId"`
}

// NewParticipant seats identity with the rendezvous id it announced for this room.
func NewParticipant(identity Identity, rendezvous RendezvousID) Participant {
	return Participant{
		ConnectionID: identity.ConnectionID,
		DisplayName:  identity.DisplayName,
		RendezvousID: rendezvous,
	}
}
