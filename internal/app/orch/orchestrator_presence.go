package orch

import (
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// onLogin stores or overwrites the identity, then tells everyone who is online
// and which rooms exist.
func (o *Orchestrator) onLogin(e Login) []core.Outbound {
	o.Connections.Put(e.From, domain.NewIdentity(e.From, e.DisplayName, e.LocationHint))
	everyone := o.Connections.IDs()
	return []core.Outbound{o.onlineUsers(everyone), o.videoRooms(everyone)}
}

// onChatMessage relays to an online receiver and echoes to the sender.
func (o *Orchestrator) onChatMessage(e ChatMessage) []core.Outbound {
	if _, ok := o.Connections.Get(e.Receiver); !ok {
		log.Debug().Str("module", "orch").Str("conn", string(e.From)).Str("to", string(e.Receiver)).Msg("receiver offline, message dropped")
		return nil
	}
	return []core.Outbound{{
		Type:       core.EventChatMessage,
		Recipients: lo.Uniq([]domain.ConnectionID{e.Receiver, e.From}),
		Payload: ChatPayload{
			SenderConnectionID: e.From,
			Content:            e.Content,
			MessageID:          e.MessageID,
		},
	}}
}

// onDisconnect vacates every room the connection sat in, then forgets it.
func (o *Orchestrator) onDisconnect(e Disconnect) []core.Outbound {
	others := lo.Without(o.Connections.IDs(), e.From)

	var outs []core.Outbound
	for _, roomID := range o.Rooms.RoomsOf(e.From) {
		outs = append(outs, o.vacate(roomID, e.From)...)
		outs = append(outs, o.videoRooms(others))
	}

	o.Connections.Remove(e.From)
	outs = append(outs, core.Outbound{
		Type:       core.EventUserDisconnected,
		Recipients: o.Connections.IDs(),
		Payload:    e.From,
	})
	log.Info().Str("module", "orch").Str("conn", string(e.From)).Msg("connection gone")
	return outs
}
