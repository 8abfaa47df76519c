package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_Clone_Detaches_Participants(t *testing.T) {
	req := require.New(t)
	ann := NewIdentity("c1", "ann", json.RawMessage(`"Lyon"`))
	room := NewRoom("r1", NewParticipant(ann, "rv1"))

	clone := room.Clone()
	clone.Participants[0].DisplayName = "changed"

	req.Equal("ann", room.Participants[0].DisplayName)
	req.True(room.Has("c1"))
	req.False(room.Has("c2"))
	first, ok := room.First()
	req.True(ok)
	req.Equal(RendezvousID("rv1"), first.RendezvousID)
}

func TestIdentity_Clone(t *testing.T) {
	req := require.New(t)
	hint := json.RawMessage(`{"city":"Lyon"}`)
	id := NewIdentity("c1", "ann", hint)

	// The constructor keeps its own copy of the hint
	hint[2] = 'X'
	req.JSONEq(`{"city":"Lyon"}`, string(id.LocationHint))

	req.Nil(NewIdentity("c2", "bob", nil).Clone().LocationHint)
}
