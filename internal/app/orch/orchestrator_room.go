package orch

import (
	"fmt"

	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) onRoomCreate(e RoomCreate) ([]core.Outbound, error) {
	identity, ok := o.Connections.Get(e.From)
	if !ok {
		return nil, fmt.Errorf("%w: create %q", ErrNotLoggedIn, e.NewRoomID)
	}
	if current, ok := o.Rooms.RoomOf(e.From); ok {
		return nil, fmt.Errorf("%w: %q, create %q", ErrAlreadyInRoom, current, e.NewRoomID)
	}

	if replaced := o.Rooms.Create(e.NewRoomID, domain.NewParticipant(identity, e.Rendezvous)); replaced {
		log.Warn().Str("module", "orch").Str("room", string(e.NewRoomID)).Str("conn", string(e.From)).Msg("room id reused, previous room replaced")
	}
	return []core.Outbound{o.videoRooms(o.Connections.IDs())}, nil
}

// onRoomJoin tells the current participants who is arriving, then seats the joiner.
// The joiner learns nothing directly; the arrival notice drives call setup.
func (o *Orchestrator) onRoomJoin(e RoomJoin) ([]core.Outbound, error) {
	room, ok := o.Rooms.Get(e.RoomID)
	if !ok {
		log.Debug().Str("module", "orch").Str("room", string(e.RoomID)).Str("conn", string(e.From)).Msg("join of unknown room ignored")
		return nil, nil
	}
	identity, ok := o.Connections.Get(e.From)
	if !ok {
		return nil, fmt.Errorf("%w: join %q", ErrNotLoggedIn, e.RoomID)
	}
	if current, ok := o.Rooms.RoomOf(e.From); ok {
		return nil, fmt.Errorf("%w: %q, join %q", ErrAlreadyInRoom, current, e.RoomID)
	}

	outs := make([]core.Outbound, 0, len(room.Participants)+1)
	for _, p := range room.Participants {
		outs = append(outs, unicast(core.EventVideoRoomInit, p.ConnectionID, RoomInitPayload{
			NewParticipantRendezvousID: e.Rendezvous,
		}))
	}
	o.Rooms.AddParticipant(e.RoomID, domain.NewParticipant(identity, e.Rendezvous))
	return append(outs, o.videoRooms(o.Connections.IDs())), nil
}

func (o *Orchestrator) onRoomLeave(e RoomLeave) []core.Outbound {
	if _, ok := o.Rooms.Get(e.RoomID); !ok {
		log.Debug().Str("module", "orch").Str("room", string(e.RoomID)).Str("conn", string(e.From)).Msg("leave of unknown room ignored")
		return nil
	}
	outs := o.vacate(e.RoomID, e.From)
	return append(outs, o.videoRooms(o.Connections.IDs()))
}

// vacate removes conn from the room. Whoever is first afterwards is told the call ended;
// an emptied room is already gone from the registry.
func (o *Orchestrator) vacate(roomID domain.RoomID, conn domain.ConnectionID) []core.Outbound {
	if remaining := o.Rooms.RemoveParticipant(roomID, conn); remaining == 0 {
		return nil
	}
	room, _ := o.Rooms.Get(roomID)
	first, _ := room.First()
	return []core.Outbound{unicast(core.EventVideoCallDisconnect, first.ConnectionID, nil)}
}
