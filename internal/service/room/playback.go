package room

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/wssender"
)

type SetActiveEntryParams struct {
	Uid     domain.UserId
	EntryId *domain.PlaylistEntryId
}

type SetActiveEntryResponse struct {
	Rid     domain.RoomId
	EntryId *domain.PlaylistEntryId
	Members []domain.UserId
}

// SetActiveEntry loads a new playlist entry (or unloads with nil). The room
// pauses, the anchor rewinds to zero and every member drops to Loading; the
// members' stale timestamps and pending corrections are purged so the next
// desync tick starts from a clean slate.
func (s *service) SetActiveEntry(ctx context.Context, params *SetActiveEntryParams) (SetActiveEntryResponse, error) {
	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return SetActiveEntryResponse{}, ErrNotInRoom
	}

	if params.EntryId != nil {
		if *params.EntryId < 1 {
			return SetActiveEntryResponse{}, fmt.Errorf("%w: entry id must be >= 1", ErrValidation)
		}
		entry, err := s.state.Playlist.Get(rid, *params.EntryId)
		if err != nil {
			return SetActiveEntryResponse{}, err
		}
		if !entry.IsPlayable() {
			return SetActiveEntryResponse{}, ErrEntryNotPlayable
		}
	}

	if err := s.state.Playback.SetActiveEntry(rid, params.EntryId, s.clock.Now()); err != nil {
		return SetActiveEntryResponse{}, fmt.Errorf("failed to set active entry: %w", err)
	}

	members := s.state.Membership.Members(rid)
	s.state.Readiness.ResetAll(rid, domain.Loading)
	for _, uid := range members {
		s.state.Timestamps.Remove(uid)
		s.state.Minor.Remove(uid)
	}

	if !s.state.Playback.AnyPlaying() {
		s.sleepDesync()
	}

	return SetActiveEntryResponse{
		Rid:     rid,
		EntryId: params.EntryId,
		Members: members,
	}, nil
}

type PlayParams struct {
	Uid domain.UserId
}

type PlayResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

// Play starts playback. The gate: an active entry is loaded and every
// member reports Ready.
func (s *service) Play(ctx context.Context, params *PlayParams) (PlayResponse, error) {
	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return PlayResponse{}, ErrNotInRoom
	}

	pb, err := s.state.Playback.Snapshot(rid)
	if err != nil {
		return PlayResponse{}, fmt.Errorf("failed to snapshot playback: %w", err)
	}
	if pb.ActiveEntry == nil {
		return PlayResponse{}, ErrNoActiveEntry
	}
	if !s.state.Readiness.AllReady(rid) {
		return PlayResponse{}, ErrNotAllReady
	}

	if _, err := s.state.Playback.Play(rid, s.clock.Now()); err != nil {
		return PlayResponse{}, fmt.Errorf("failed to play: %w", err)
	}

	s.wakeDesync()

	return PlayResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}

type PauseParams struct {
	Uid domain.UserId
}

type PauseResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) Pause(ctx context.Context, params *PauseParams) (PauseResponse, error) {
	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return PauseResponse{}, ErrNotInRoom
	}

	if _, err := s.state.Playback.Pause(rid, s.clock.Now()); err != nil {
		return PauseResponse{}, fmt.Errorf("failed to pause: %w", err)
	}

	if !s.state.Playback.AnyPlaying() {
		s.sleepDesync()
	}

	return PauseResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}

type SeekParams struct {
	Uid domain.UserId
	T   float64
}

type SeekResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) Seek(ctx context.Context, params *SeekParams) (SeekResponse, error) {
	if math.IsNaN(params.T) || math.IsInf(params.T, 0) || params.T < 0 {
		return SeekResponse{}, fmt.Errorf("%w: seek target must be a finite non-negative number", ErrValidation)
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return SeekResponse{}, ErrNotInRoom
	}

	if _, err := s.state.Playback.Seek(rid, params.T, s.clock.Now()); err != nil {
		return SeekResponse{}, fmt.Errorf("failed to seek: %w", err)
	}

	// pre-seek reports would read as huge drift against the new position,
	// so they are dropped and any held slowdown is released
	members := s.state.Membership.Members(rid)
	for _, uid := range members {
		s.state.Timestamps.Remove(uid)
		if s.state.Minor.Remove(uid) {
			s.sender.ToUser(ctx, uid, &wssender.Output{Type: EventMinorDesyncStop})
		}
	}

	return SeekResponse{
		Rid:     rid,
		Members: members,
	}, nil
}

type SetPlaybackSpeedParams struct {
	Uid   domain.UserId
	Value decimal.Decimal
}

type SetPlaybackSpeedResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) SetPlaybackSpeed(ctx context.Context, params *SetPlaybackSpeedParams) (SetPlaybackSpeedResponse, error) {
	if params.Value.LessThan(domain.MinPlaybackSpeed) || params.Value.GreaterThan(domain.MaxPlaybackSpeed) {
		return SetPlaybackSpeedResponse{}, fmt.Errorf("%w: playback speed must be within [0.25, 4.00]", ErrValidation)
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return SetPlaybackSpeedResponse{}, ErrNotInRoom
	}

	if _, err := s.state.Playback.SetSpeed(rid, params.Value, s.clock.Now()); err != nil {
		return SetPlaybackSpeedResponse{}, fmt.Errorf("failed to set playback speed: %w", err)
	}

	return SetPlaybackSpeedResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}

// ExpectedTimestamp exposes the server's projected media time for a room.
func (s *service) ExpectedTimestamp(rid domain.RoomId) (float64, error) {
	return s.state.Playback.ExpectedTimestamp(rid, s.clock.Now())
}
