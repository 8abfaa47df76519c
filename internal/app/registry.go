package app

import (
	"sync"

	"github.com/dkeye/callhub/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ConnectionRegistry maps live connections to what they announced at login.
// Enumeration follows first-login order.
type ConnectionRegistry struct {
	mu    sync.RWMutex
	order []domain.ConnectionID
	byID  map[domain.ConnectionID]domain.Identity
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		byID: make(map[domain.ConnectionID]domain.Identity),
	}
}

// Put inserts or overwrites. An overwrite keeps its position.
func (r *ConnectionRegistry) Put(id domain.ConnectionID, identity domain.Identity) {
	identity = identity.Clone()
	identity.ConnectionID = id

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		r.order = append(r.order, id)
	}
	r.byID[id] = identity
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", identity.DisplayName).Msg("identity stored")
}

func (r *ConnectionRegistry) Remove(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	r.order = lo.Without(r.order, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("identity removed")
}

func (r *ConnectionRegistry) Get(id domain.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.byID[id]
	if !ok {
		return domain.Identity{}, false
	}
	return identity.Clone(), true
}

func (r *ConnectionRegistry) List() []domain.Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Map(r.order, func(id domain.ConnectionID, _ int) domain.Identity {
		return r.byID[id].Clone()
	})
}

// IDs is List without the payload, used to address broadcasts.
func (r *ConnectionRegistry) IDs() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnectionID, len(r.order))
	copy(out, r.order)
	return out
}

func (r *ConnectionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
