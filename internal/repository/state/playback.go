package state

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
)

type roomPlayback struct {
	activeEntry *domain.PlaylistEntryId
	state       domain.PlayingState
	speed       decimal.Decimal
	anchor      domain.Anchor
}

type PlaybackSnapshot struct {
	ActiveEntry *domain.PlaylistEntryId
	State       domain.PlayingState
	Speed       decimal.Decimal
	Anchor      domain.Anchor
}

// Playback holds the per-room playback state machine data. Every transition
// re-anchors so the expected timestamp stays continuous across play, pause,
// seek and speed changes.
type Playback struct {
	mu    sync.RWMutex
	rooms map[domain.RoomId]*roomPlayback
}

func NewPlayback() *Playback {
	return &Playback{rooms: make(map[domain.RoomId]*roomPlayback)}
}

func (p *Playback) EnsureRoom(rid domain.RoomId, speed decimal.Decimal, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.rooms[rid]; ok {
		return
	}
	p.rooms[rid] = &roomPlayback{
		state:  domain.Paused,
		speed:  speed,
		anchor: domain.Anchor{Instant: now, Timestamp: 0},
	}
}

func (p *Playback) Remove(rid domain.RoomId) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.rooms, rid)
}

func (p *Playback) Snapshot(rid domain.RoomId) (PlaybackSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[rid]
	if !ok {
		return PlaybackSnapshot{}, ErrRoomNotFound
	}

	return p.snapshotLocked(r), nil
}

func (p *Playback) snapshotLocked(r *roomPlayback) PlaybackSnapshot {
	var active *domain.PlaylistEntryId
	if r.activeEntry != nil {
		eid := *r.activeEntry
		active = &eid
	}

	return PlaybackSnapshot{
		ActiveEntry: active,
		State:       r.state,
		Speed:       r.speed,
		Anchor:      r.anchor,
	}
}

// SetActiveEntry loads eid (or clears the active entry when nil), pauses
// and rewinds the anchor to zero.
func (p *Playback) SetActiveEntry(rid domain.RoomId, eid *domain.PlaylistEntryId, now time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return ErrRoomNotFound
	}

	r.activeEntry = eid
	r.state = domain.Paused
	r.anchor = domain.Anchor{Instant: now, Timestamp: 0}

	return nil
}

func (p *Playback) Play(rid domain.RoomId, now time.Time) (PlaybackSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return PlaybackSnapshot{}, ErrRoomNotFound
	}

	r.anchor = domain.Anchor{Instant: now, Timestamp: r.anchor.Project(now, r.speed, r.state)}
	r.state = domain.Playing

	return p.snapshotLocked(r), nil
}

func (p *Playback) Pause(rid domain.RoomId, now time.Time) (PlaybackSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return PlaybackSnapshot{}, ErrRoomNotFound
	}

	r.anchor = domain.Anchor{Instant: now, Timestamp: r.anchor.Project(now, r.speed, r.state)}
	r.state = domain.Paused

	return p.snapshotLocked(r), nil
}

func (p *Playback) Seek(rid domain.RoomId, t float64, now time.Time) (PlaybackSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return PlaybackSnapshot{}, ErrRoomNotFound
	}

	r.anchor = domain.Anchor{Instant: now, Timestamp: t}

	return p.snapshotLocked(r), nil
}

func (p *Playback) SetSpeed(rid domain.RoomId, speed decimal.Decimal, now time.Time) (PlaybackSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.rooms[rid]
	if !ok {
		return PlaybackSnapshot{}, ErrRoomNotFound
	}

	// re-anchor at the old speed before switching, so the expected
	// timestamp is continuous at the transition instant
	r.anchor = domain.Anchor{Instant: now, Timestamp: r.anchor.Project(now, r.speed, r.state)}
	r.speed = speed

	return p.snapshotLocked(r), nil
}

func (p *Playback) ExpectedTimestamp(rid domain.RoomId, now time.Time) (float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.rooms[rid]
	if !ok {
		return 0, ErrRoomNotFound
	}

	return r.anchor.Project(now, r.speed, r.state), nil
}

// AnyPlaying reports whether at least one room is in the Playing state with
// an active entry. The desync supervisor sleeps when it returns false.
func (p *Playback) AnyPlaying() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, r := range p.rooms {
		if r.state == domain.Playing && r.activeEntry != nil {
			return true
		}
	}

	return false
}
