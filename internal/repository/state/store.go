package state

// Store aggregates the typed sub-stores that make up the engine's real-time
// state. Each sub-store carries its own reader-writer lock; callers that
// touch several of them acquire in the fixed order membership, playback,
// playlist, readiness, timestamps, ping, minor-desync to stay deadlock-free.
type Store struct {
	Rooms      *Rooms
	Membership *Membership
	Playback   *Playback
	Playlist   *Playlist
	Readiness  *Readiness
	Timestamps *Timestamps
	Pings      *Pings
	Minor      *MinorDesync
}

func NewStore() *Store {
	return &Store{
		Rooms:      NewRooms(),
		Membership: NewMembership(),
		Playback:   NewPlayback(),
		Playlist:   NewPlaylist(),
		Readiness:  NewReadiness(),
		Timestamps: NewTimestamps(),
		Pings:      NewPings(),
		Minor:      NewMinorDesync(),
	}
}
