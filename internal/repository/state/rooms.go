package state

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/syncmiru/server/internal/domain"
)

// Rooms is the registry of rooms known to the engine. Rooms are created by
// the admin surface; their real-time playback state lives in the other
// stores keyed by the same RoomId.
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomId]domain.RoomSettings
	nextId domain.RoomId
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[domain.RoomId]domain.RoomSettings),
		nextId: 1,
	}
}

func (r *Rooms) Create(settings domain.RoomSettings) domain.RoomId {
	r.mu.Lock()
	defer r.mu.Unlock()

	rid := r.nextId
	r.nextId++
	r.rooms[rid] = settings

	return rid
}

func (r *Rooms) Exists(rid domain.RoomId) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[rid]
	return ok
}

func (r *Rooms) Settings(rid domain.RoomId) (domain.RoomSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings, ok := r.rooms[rid]
	if !ok {
		return domain.RoomSettings{}, ErrRoomNotFound
	}

	return settings, nil
}

func (r *Rooms) SetSettings(rid domain.RoomId, settings domain.RoomSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[rid]; !ok {
		return ErrRoomNotFound
	}
	r.rooms[rid] = settings

	return nil
}

func (r *Rooms) Ids() []domain.RoomId {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := maps.Keys(r.rooms)
	slices.Sort(ids)

	return ids
}
