package state

import (
	"sync"

	"github.com/syncmiru/server/internal/domain"
)

// Readiness tracks the per-room user -> ready state map that gates play
// transitions.
type Readiness struct {
	mu    sync.RWMutex
	rooms map[domain.RoomId]map[domain.UserId]domain.ReadyState
}

func NewReadiness() *Readiness {
	return &Readiness{rooms: make(map[domain.RoomId]map[domain.UserId]domain.ReadyState)}
}

func (r *Readiness) Set(rid domain.RoomId, uid domain.UserId, st domain.ReadyState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[rid] == nil {
		r.rooms[rid] = make(map[domain.UserId]domain.ReadyState)
	}
	r.rooms[rid][uid] = st
}

// ResetAll sets every member of rid to st. Used when the active entry
// changes and everyone has to reload.
func (r *Readiness) ResetAll(rid domain.RoomId, st domain.ReadyState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for uid := range r.rooms[rid] {
		r.rooms[rid][uid] = st
	}
}

func (r *Readiness) Remove(rid domain.RoomId, uid domain.UserId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.rooms[rid]; ok {
		delete(members, uid)
		if len(members) == 0 {
			delete(r.rooms, rid)
		}
	}
}

func (r *Readiness) Get(rid domain.RoomId, uid domain.UserId) (domain.ReadyState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.rooms[rid][uid]
	return st, ok
}

func (r *Readiness) AllReady(rid domain.RoomId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[rid]
	if !ok || len(members) == 0 {
		return false
	}
	for _, st := range members {
		if st != domain.Ready {
			return false
		}
	}

	return true
}

func (r *Readiness) Snapshot(rid domain.RoomId) map[domain.UserId]domain.ReadyState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[rid]
	out := make(map[domain.UserId]domain.ReadyState, len(members))
	for uid, st := range members {
		out[uid] = st
	}

	return out
}
