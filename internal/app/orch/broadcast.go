package orch

import (
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
)

func (o *Orchestrator) onlineUsers(to []domain.ConnectionID) core.Outbound {
	return core.Outbound{Type: core.EventOnlineUsers, Recipients: to, Payload: o.Connections.List()}
}

func (o *Orchestrator) videoRooms(to []domain.ConnectionID) core.Outbound {
	return core.Outbound{Type: core.EventVideoRooms, Recipients: to, Payload: o.Rooms.List()}
}

func unicast(event core.EventType, to domain.ConnectionID, payload any) core.Outbound {
	return core.Outbound{Type: event, Recipients: []domain.ConnectionID{to}, Payload: payload}
}
