package app

import (
	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

func (a BackpressureAction) String() string {
	switch a {
	case KickMember:
		return "kick"
	case DropFrame:
		return "drop"
	default:
		return "none"
	}
}

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(conn domain.ConnectionID, event core.EventType) BackpressureAction
}

// SimplePolicy kicks slow consumers; they reconnect and get a fresh snapshot.
// Snapshot broadcasts are dropped instead, since the next one replaces them.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(_ domain.ConnectionID, event core.EventType) BackpressureAction {
	if isSnapshot(event) {
		return DropFrame
	}
	return KickMember
}

func isSnapshot(event core.EventType) bool {
	return event == core.EventOnlineUsers || event == core.EventVideoRooms
}

// DropPolicy loses the frame and keeps the connection.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ConnectionID, core.EventType) BackpressureAction {
	return DropFrame
}

// PolicyFor maps the backpressure config value to a policy. Unknown values kick.
func PolicyFor(mode string) Policy {
	if mode == "drop" {
		return DropPolicy{}
	}
	return SimplePolicy{}
}
