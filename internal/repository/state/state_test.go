package state

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncmiru/server/internal/domain"
)

func TestMembership(t *testing.T) {
	m := NewMembership()

	_, ok := m.RoomOf(1)
	assert.False(t, ok)
	assert.Nil(t, m.Members(1))

	prev, hadPrev := m.Join(1, 10)
	assert.False(t, hadPrev)
	assert.Zero(t, prev)
	m.Join(3, 10)
	m.Join(2, 10)

	assert.Equal(t, []domain.UserId{1, 2, 3}, m.Members(10), "members come back sorted")

	// joining another room leaves the first one
	prev, hadPrev = m.Join(2, 20)
	assert.True(t, hadPrev)
	assert.Equal(t, domain.RoomId(10), prev)
	assert.Equal(t, []domain.UserId{1, 3}, m.Members(10))
	assert.Equal(t, []domain.UserId{2}, m.Members(20))

	rid, ok := m.RoomOf(2)
	require.True(t, ok)
	assert.Equal(t, domain.RoomId(20), rid)

	rid, ok = m.Leave(2)
	require.True(t, ok)
	assert.Equal(t, domain.RoomId(20), rid)
	assert.Nil(t, m.Members(20))

	_, ok = m.Leave(2)
	assert.False(t, ok)
}

func TestPlaylist(t *testing.T) {
	p := NewPlaylist()

	_, err := p.Append(1, []domain.PlaylistEntry{domain.NewUrlEntry("https://example.com/a")})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	p.EnsureRoom(1)
	added, err := p.Append(1, []domain.PlaylistEntry{
		domain.NewUrlEntry("https://example.com/a"),
		domain.NewVideoEntry("share1", "movies/b.mkv"),
	})
	require.NoError(t, err)
	require.Len(t, added, 2)

	entries, order, err := p.Snapshot(1)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	require.Len(t, order, 2)
	assert.Less(t, order[0], order[1], "ids are handed out in append order")

	// ids are never reused across rooms
	p.EnsureRoom(2)
	added2, err := p.Append(2, []domain.PlaylistEntry{domain.NewUrlEntry("https://example.com/c")})
	require.NoError(t, err)
	for eid := range added2 {
		assert.NotContains(t, entries, eid)
	}

	require.NoError(t, p.Reorder(1, []domain.PlaylistEntryId{order[1], order[0]}))
	_, newOrder, err := p.Snapshot(1)
	require.NoError(t, err)
	assert.Equal(t, []domain.PlaylistEntryId{order[1], order[0]}, newOrder)

	assert.ErrorIs(t, p.Reorder(1, []domain.PlaylistEntryId{order[0]}), ErrOrderMismatch)
	assert.ErrorIs(t, p.Reorder(1, []domain.PlaylistEntryId{order[0], order[0]}), ErrOrderMismatch)
	assert.ErrorIs(t, p.Reorder(1, []domain.PlaylistEntryId{order[0], 999}), ErrOrderMismatch)

	require.NoError(t, p.Delete(1, order[0]))
	assert.Equal(t, 1, p.Len(1))
	assert.ErrorIs(t, p.Delete(1, order[0]), ErrEntryNotFound)

	_, _, err = p.Snapshot(99)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPlaybackAnchor(t *testing.T) {
	pb := NewPlayback()
	t0 := time.Unix(1700000000, 0)
	speed := decimal.NewFromInt(1)

	_, err := pb.Snapshot(1)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	pb.EnsureRoom(1, speed, t0)

	ts, err := pb.ExpectedTimestamp(1, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts, "paused room does not advance")

	_, err = pb.Play(1, t0)
	require.NoError(t, err)
	ts, err = pb.ExpectedTimestamp(1, t0.Add(10*time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, ts, 1e-9)

	// speed change re-anchors so the projection is continuous
	_, err = pb.SetSpeed(1, decimal.NewFromInt(2), t0.Add(10*time.Second))
	require.NoError(t, err)
	ts, err = pb.ExpectedTimestamp(1, t0.Add(15*time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, ts, 1e-9)

	snap, err := pb.Pause(1, t0.Add(15*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.Paused, snap.State)
	ts, err = pb.ExpectedTimestamp(1, t0.Add(60*time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 20.0, ts, 1e-9)

	_, err = pb.Seek(1, 5.5, t0.Add(60*time.Second))
	require.NoError(t, err)
	ts, err = pb.ExpectedTimestamp(1, t0.Add(60*time.Second))
	require.NoError(t, err)
	assert.InDelta(t, 5.5, ts, 1e-9)

	eid := domain.PlaylistEntryId(7)
	require.NoError(t, pb.SetActiveEntry(1, &eid, t0.Add(61*time.Second)))
	snap, err = pb.Snapshot(1)
	require.NoError(t, err)
	require.NotNil(t, snap.ActiveEntry)
	assert.Equal(t, eid, *snap.ActiveEntry)
	assert.Equal(t, domain.Paused, snap.State)
	assert.Equal(t, 0.0, snap.Anchor.Timestamp, "loading an entry rewinds to zero")

	assert.False(t, pb.AnyPlaying())
	_, err = pb.Play(1, t0.Add(62*time.Second))
	require.NoError(t, err)
	assert.True(t, pb.AnyPlaying())
}

func TestReadiness(t *testing.T) {
	r := NewReadiness()

	assert.False(t, r.AllReady(1), "empty room is never all-ready")

	r.Set(1, 10, domain.Ready)
	r.Set(1, 11, domain.Loading)
	assert.False(t, r.AllReady(1))

	r.Set(1, 11, domain.Ready)
	assert.True(t, r.AllReady(1))

	r.ResetAll(1, domain.Loading)
	snap := r.Snapshot(1)
	assert.Equal(t, map[domain.UserId]domain.ReadyState{10: domain.Loading, 11: domain.Loading}, snap)

	r.Remove(1, 10)
	r.Remove(1, 11)
	assert.False(t, r.AllReady(1))
}

func TestRoomsRegistry(t *testing.T) {
	r := NewRooms()

	settings := domain.RoomSettings{Name: "a", PlaybackSpeed: decimal.NewFromInt(1)}
	rid1 := r.Create(settings)
	rid2 := r.Create(domain.RoomSettings{Name: "b", PlaybackSpeed: decimal.NewFromInt(1)})
	assert.NotEqual(t, rid1, rid2)
	assert.Equal(t, []domain.RoomId{rid1, rid2}, r.Ids())

	got, err := r.Settings(rid1)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	settings.Name = "renamed"
	require.NoError(t, r.SetSettings(rid1, settings))
	got, err = r.Settings(rid1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	assert.ErrorIs(t, r.SetSettings(999, settings), ErrRoomNotFound)
	assert.False(t, r.Exists(999))
}

func TestMinorDesyncSet(t *testing.T) {
	m := NewMinorDesync()

	assert.False(t, m.Contains(1))
	m.Add(1)
	assert.True(t, m.Contains(1))
	assert.True(t, m.Remove(1))
	assert.False(t, m.Remove(1), "second remove reports absence")
}
