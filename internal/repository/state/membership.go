package state

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/syncmiru/server/internal/domain"
)

// Membership is the bidirectional multimap between rooms and users. The
// two maps are mutated together under one lock so they can never disagree,
// which keeps the at-most-one-room invariant by construction.
type Membership struct {
	mu    sync.RWMutex
	users map[domain.RoomId]map[domain.UserId]struct{}
	rooms map[domain.UserId]domain.RoomId
}

func NewMembership() *Membership {
	return &Membership{
		users: make(map[domain.RoomId]map[domain.UserId]struct{}),
		rooms: make(map[domain.UserId]domain.RoomId),
	}
}

// Join moves uid into rid, leaving any previous room first. It returns the
// previous room id when the user was joined somewhere else.
func (m *Membership) Join(uid domain.UserId, rid domain.RoomId) (domain.RoomId, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, hadPrev := m.rooms[uid]
	if hadPrev {
		m.removeLocked(uid, prev)
	}

	if m.users[rid] == nil {
		m.users[rid] = make(map[domain.UserId]struct{})
	}
	m.users[rid][uid] = struct{}{}
	m.rooms[uid] = rid

	return prev, hadPrev
}

// Leave removes uid from its room and returns the room it left.
func (m *Membership) Leave(uid domain.UserId) (domain.RoomId, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rid, ok := m.rooms[uid]
	if !ok {
		return 0, false
	}
	m.removeLocked(uid, rid)

	return rid, true
}

func (m *Membership) removeLocked(uid domain.UserId, rid domain.RoomId) {
	delete(m.rooms, uid)
	if members, ok := m.users[rid]; ok {
		delete(members, uid)
		if len(members) == 0 {
			delete(m.users, rid)
		}
	}
}

func (m *Membership) RoomOf(uid domain.UserId) (domain.RoomId, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rid, ok := m.rooms[uid]
	return rid, ok
}

// Members returns the members of rid sorted by uid for deterministic
// fan-out and correction ordering.
func (m *Membership) Members(rid domain.RoomId) []domain.UserId {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.users[rid]
	if !ok {
		return nil
	}

	uids := maps.Keys(members)
	slices.Sort(uids)

	return uids
}
