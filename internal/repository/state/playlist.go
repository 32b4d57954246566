package state

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/syncmiru/server/internal/domain"
)

type roomPlaylist struct {
	entries map[domain.PlaylistEntryId]domain.PlaylistEntry
	order   []domain.PlaylistEntryId
}

// Playlist holds the per-room entry map plus the explicit order vector.
// The order always contains exactly the keys of the entry map.
type Playlist struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomId]*roomPlaylist
	nextId domain.PlaylistEntryId
}

func NewPlaylist() *Playlist {
	return &Playlist{
		rooms:  make(map[domain.RoomId]*roomPlaylist),
		nextId: 1,
	}
}

func (p *Playlist) EnsureRoom(rid domain.RoomId) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rooms[rid]; !ok {
		p.rooms[rid] = &roomPlaylist{entries: make(map[domain.PlaylistEntryId]domain.PlaylistEntry)}
	}
}

func (p *Playlist) Remove(rid domain.RoomId) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.rooms, rid)
}

// Append adds entries in the given order with fresh ids and returns the
// id -> entry map of what was added.
func (p *Playlist) Append(rid domain.RoomId, entries []domain.PlaylistEntry) (map[domain.PlaylistEntryId]domain.PlaylistEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return nil, ErrRoomNotFound
	}

	added := make(map[domain.PlaylistEntryId]domain.PlaylistEntry, len(entries))
	for _, entry := range entries {
		eid := p.nextId
		p.nextId++
		r.entries[eid] = entry
		r.order = append(r.order, eid)
		added[eid] = entry
	}

	return added, nil
}

func (p *Playlist) Delete(rid domain.RoomId, eid domain.PlaylistEntryId) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return ErrRoomNotFound
	}
	if _, ok := r.entries[eid]; !ok {
		return ErrEntryNotFound
	}

	delete(r.entries, eid)
	idx := slices.Index(r.order, eid)
	r.order = slices.Delete(r.order, idx, idx+1)

	return nil
}

// Reorder replaces the order vector iff it is a permutation of the current
// entry ids.
func (p *Playlist) Reorder(rid domain.RoomId, order []domain.PlaylistEntryId) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return ErrRoomNotFound
	}

	if len(order) != len(r.entries) {
		return ErrOrderMismatch
	}
	seen := make(map[domain.PlaylistEntryId]struct{}, len(order))
	for _, eid := range order {
		if _, ok := r.entries[eid]; !ok {
			return ErrOrderMismatch
		}
		if _, dup := seen[eid]; dup {
			return ErrOrderMismatch
		}
		seen[eid] = struct{}{}
	}

	r.order = slices.Clone(order)

	return nil
}

func (p *Playlist) Get(rid domain.RoomId, eid domain.PlaylistEntryId) (domain.PlaylistEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[rid]
	if !ok {
		return domain.PlaylistEntry{}, ErrRoomNotFound
	}
	entry, ok := r.entries[eid]
	if !ok {
		return domain.PlaylistEntry{}, ErrEntryNotFound
	}

	return entry, nil
}

func (p *Playlist) Len(rid domain.RoomId) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[rid]
	if !ok {
		return 0
	}

	return len(r.entries)
}

func (p *Playlist) Snapshot(rid domain.RoomId) (map[domain.PlaylistEntryId]domain.PlaylistEntry, []domain.PlaylistEntryId, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[rid]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	entries := make(map[domain.PlaylistEntryId]domain.PlaylistEntry, len(r.entries))
	for eid, entry := range r.entries {
		entries[eid] = entry
	}

	return entries, slices.Clone(r.order), nil
}
