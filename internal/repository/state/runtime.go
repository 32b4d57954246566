package state

import (
	"sync"
	"time"

	"github.com/syncmiru/server/internal/domain"
)

// Pings holds the last clamped client-reported round-trip latency in
// seconds per connected user.
type Pings struct {
	mu    sync.RWMutex
	pings map[domain.UserId]float64
}

func NewPings() *Pings {
	return &Pings{pings: make(map[domain.UserId]float64)}
}

func (p *Pings) Set(uid domain.UserId, ping float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pings[uid] = ping
}

func (p *Pings) Get(uid domain.UserId) (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ping, ok := p.pings[uid]
	return ping, ok
}

func (p *Pings) Remove(uid domain.UserId) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pings, uid)
}

// Timestamps holds the last media timestamp each user reported along with
// the monotonic instant it arrived. Only the desync controller reads it.
type Timestamps struct {
	mu      sync.RWMutex
	samples map[domain.UserId]domain.TimestampSample
}

func NewTimestamps() *Timestamps {
	return &Timestamps{samples: make(map[domain.UserId]domain.TimestampSample)}
}

func (t *Timestamps) Set(uid domain.UserId, value float64, arrivedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples[uid] = domain.TimestampSample{Value: value, ArrivedAt: arrivedAt}
}

func (t *Timestamps) Get(uid domain.UserId) (domain.TimestampSample, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sample, ok := t.samples[uid]
	return sample, ok
}

func (t *Timestamps) Remove(uid domain.UserId) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.samples, uid)
}

// MinorDesync is the set of users currently being slowed by a minor
// correction.
type MinorDesync struct {
	mu    sync.RWMutex
	users map[domain.UserId]struct{}
}

func NewMinorDesync() *MinorDesync {
	return &MinorDesync{users: make(map[domain.UserId]struct{})}
}

func (m *MinorDesync) Add(uid domain.UserId) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[uid] = struct{}{}
}

// Remove reports whether uid was in the set.
func (m *MinorDesync) Remove(uid domain.UserId) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.users[uid]
	delete(m.users, uid)

	return ok
}

func (m *MinorDesync) Contains(uid domain.UserId) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[uid]
	return ok
}
