package domain

import "slices"

type RoomID string

// Room keeps participants in join order.
type Room struct {
	ID           RoomID        `json:"-"`
	Participants []Participant `json:"participants"`
}

func NewRoom(id RoomID, first Participant) *Room {
	return &Room{ID: id, Participants: []Participant{first}}
}

func (r *Room) Has(id ConnectionID) bool {
	return slices.ContainsFunc(r.Participants, func(p Participant) bool {
		return p.ConnectionID == id
	})
}

// First returns the earliest remaining participant.
func (r *Room) First() (Participant, bool) {
	if len(r.Participants) == 0 {
		return Participant{}, false
	}
	return r.Participants[0], true
}

func (r *Room) Clone() Room {
	return Room{ID: r.ID, Participants: slices.Clone(r.Participants)}
}
