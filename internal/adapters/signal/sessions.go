package signal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/callhub/internal/core"
	"github.com/dkeye/callhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrUnknownConnection = errors.New("unknown connection")

// Sessions is the table of open connections. It is the coordinator's Sender.
type Sessions struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]core.SignalConnection
}

func NewSessions() *Sessions {
	return &Sessions{conns: make(map[domain.ConnectionID]core.SignalConnection)}
}

var _ core.Sender = (*Sessions)(nil)

func (s *Sessions) Add(id domain.ConnectionID, conn core.SignalConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = conn
}

func (s *Sessions) Remove(id domain.ConnectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

func (s *Sessions) get(id domain.ConnectionID) (core.SignalConnection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conn, ok := s.conns[id]
	return conn, ok
}

func (s *Sessions) Send(to domain.ConnectionID, frame core.Frame) error {
	conn, ok := s.get(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, to)
	}
	return conn.TrySend(frame)
}

func (s *Sessions) Kick(to domain.ConnectionID) {
	conn, ok := s.get(to)
	if !ok {
		return
	}
	log.Warn().Str("module", "signal").Str("conn", string(to)).Msg("kicking connection")
	conn.Close()
}

// CloseAll closes every open connection and reports how many there were.
// Entries are removed by each connection's read loop as it exits.
func (s *Sessions) CloseAll() int {
	s.mu.RLock()
	conns := lo.Values(s.conns)
	s.mu.RUnlock()
	for _, conn := range conns {
		conn.Close()
	}
	return len(conns)
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}
