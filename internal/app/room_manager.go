package app

import (
	"slices"
	"sync"

	"github.com/dkeye/callhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// RoomRegistry holds rooms keyed by the creator-chosen id.
// An empty room is deleted as soon as its last participant leaves.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomID]*domain.Room)}
}

// Create replaces any room already stored under id.
// It reports whether something was replaced.
func (m *RoomRegistry) Create(id domain.RoomID, first domain.Participant) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, replaced := m.rooms[id]
	m.rooms[id] = domain.NewRoom(id, first)
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(first.ConnectionID)).Bool("replaced", replaced).Msg("room created")
	return replaced
}

func (m *RoomRegistry) Get(id domain.RoomID) (domain.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return room.Clone(), true
}

// AddParticipant appends at the end. Unknown rooms are ignored.
func (m *RoomRegistry) AddParticipant(id domain.RoomID, p domain.Participant) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return false
	}
	room.Participants = append(room.Participants, p)
	log.Debug().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(p.ConnectionID)).Int("size", len(room.Participants)).Msg("participant added")
	return true
}

// RemoveParticipant drops every seat held by conn and returns how many remain.
// The room is deleted when that number reaches zero. Unknown rooms return 0.
func (m *RoomRegistry) RemoveParticipant(id domain.RoomID, conn domain.ConnectionID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return 0
	}
	room.Participants = lo.Filter(room.Participants, func(p domain.Participant, _ int) bool {
		return p.ConnectionID != conn
	})
	remaining := len(room.Participants)
	if remaining == 0 {
		delete(m.rooms, id)
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room closed")
		return 0
	}
	log.Debug().Str("module", "app.rooms").Str("room", string(id)).Str("conn", string(conn)).Int("size", remaining).Msg("participant removed")
	return remaining
}

// List is a deep copy; callers may keep or serialize it freely.
func (m *RoomRegistry) List() map[domain.RoomID]domain.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[domain.RoomID]domain.Room, len(m.rooms))
	for id, room := range m.rooms {
		out[id] = room.Clone()
	}
	return out
}

// RoomsOf returns the ids of rooms listing conn, sorted.
func (m *RoomRegistry) RoomsOf(conn domain.ConnectionID) []domain.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.RoomID
	for id, room := range m.rooms {
		if room.Has(conn) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// RoomOf is RoomsOf for callers that rely on one room per connection.
func (m *RoomRegistry) RoomOf(conn domain.ConnectionID) (domain.RoomID, bool) {
	rooms := m.RoomsOf(conn)
	if len(rooms) == 0 {
		return "", false
	}
	return rooms[0], true
}

func (m *RoomRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
