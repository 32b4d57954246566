package room

import (
	"context"
	"fmt"
	"math"

	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/state"
)

type JoinRoomParams struct {
	Uid  domain.UserId
	Rid  domain.RoomId
	Ping float64
}

type JoinRoomResponse struct {
	Info       JoinedRoomInfo
	NewMembers []domain.UserId
	OldMembers []domain.UserId
	OldRid     domain.RoomId
	HadOldRoom bool
}

// JoinRoom moves uid into Rid, leaving any previous room first. Readiness
// and the last reported timestamp are reset on every room change.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	if params.Rid < 1 {
		return JoinRoomResponse{}, fmt.Errorf("%w: room id must be >= 1", ErrValidation)
	}
	if err := s.validatePing(params.Ping); err != nil {
		return JoinRoomResponse{}, err
	}
	if !s.state.Rooms.Exists(params.Rid) {
		return JoinRoomResponse{}, ErrRoomNotFound
	}

	oldRid, hadOld := s.state.Membership.Join(params.Uid, params.Rid)

	var oldMembers []domain.UserId
	if hadOld {
		oldMembers = s.state.Membership.Members(oldRid)
		s.state.Readiness.Remove(oldRid, params.Uid)
		s.state.Timestamps.Remove(params.Uid)
		s.state.Minor.Remove(params.Uid)
	}

	pb, err := s.state.Playback.Snapshot(params.Rid)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to snapshot playback: %w", err)
	}

	// joining mid-session means the joiner has to load the active entry
	// before it can ever be Ready
	initial := domain.NotReady
	if pb.ActiveEntry != nil {
		initial = domain.Loading
	}
	s.state.Readiness.Set(params.Rid, params.Uid, initial)
	s.state.Pings.Set(params.Uid, params.Ping)

	info, err := s.joinedRoomInfo(params.Rid, pb)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		Info:       info,
		NewMembers: s.state.Membership.Members(params.Rid),
		OldMembers: oldMembers,
		OldRid:     oldRid,
		HadOldRoom: hadOld,
	}, nil
}

func (s *service) joinedRoomInfo(rid domain.RoomId, pb state.PlaybackSnapshot) (JoinedRoomInfo, error) {
	settings, err := s.state.Rooms.Settings(rid)
	if err != nil {
		return JoinedRoomInfo{}, fmt.Errorf("failed to get settings: %w", err)
	}

	entries, order, err := s.state.Playlist.Snapshot(rid)
	if err != nil {
		return JoinedRoomInfo{}, fmt.Errorf("failed to snapshot playlist: %w", err)
	}

	var subtitles []domain.PlaylistEntryId
	for _, eid := range order {
		if entries[eid].Kind == domain.EntryKindSubtitles {
			subtitles = append(subtitles, eid)
		}
	}

	members := s.state.Membership.Members(rid)
	pings := make(map[domain.UserId]float64, len(members))
	for _, uid := range members {
		if ping, ok := s.state.Pings.Get(uid); ok {
			pings[uid] = ping
		}
	}

	return JoinedRoomInfo{
		RoomId:            rid,
		Settings:          settings,
		PlaybackSpeed:     pb.Speed,
		Pings:             pings,
		Readiness:         s.state.Readiness.Snapshot(rid),
		Entries:           entries,
		Order:             order,
		ActiveEntry:       pb.ActiveEntry,
		Subtitles:         subtitles,
		Playing:           pb.State == domain.Playing,
		ExpectedTimestamp: pb.Anchor.Project(s.clock.Now(), pb.Speed, pb.State),
	}, nil
}

type LeaveRoomParams struct {
	Uid domain.UserId
}

type LeaveRoomResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	rid, ok := s.state.Membership.Leave(params.Uid)
	if !ok {
		return LeaveRoomResponse{}, ErrNotInRoom
	}

	s.state.Readiness.Remove(rid, params.Uid)
	s.state.Timestamps.Remove(params.Uid)
	s.state.Minor.Remove(params.Uid)

	return LeaveRoomResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}

type DisconnectUserResponse struct {
	Uid     domain.UserId
	Rid     domain.RoomId
	HadRoom bool
	Members []domain.UserId
}

// DisconnectUser purges every trace of the connection's user: the
// conn binding, room membership, readiness, ping, timestamp and any
// pending minor correction.
func (s *service) DisconnectUser(ctx context.Context, conn *websocket.Conn) (DisconnectUserResponse, error) {
	uid, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		return DisconnectUserResponse{}, fmt.Errorf("failed to remove conn: %w", err)
	}

	resp := DisconnectUserResponse{Uid: uid}
	if rid, ok := s.state.Membership.Leave(uid); ok {
		s.state.Readiness.Remove(rid, uid)
		resp.Rid = rid
		resp.HadRoom = true
		resp.Members = s.state.Membership.Members(rid)
	}

	s.state.Timestamps.Remove(uid)
	s.state.Pings.Remove(uid)
	s.state.Minor.Remove(uid)

	if !s.state.Playback.AnyPlaying() {
		s.sleepDesync()
	}

	return resp, nil
}

func (s *service) validatePing(ping float64) error {
	if math.IsNaN(ping) || ping < 0 || ping > s.cfg.PingMax {
		return fmt.Errorf("%w: ping must be within [0, %v]", ErrValidation, s.cfg.PingMax)
	}

	return nil
}

type UpdatePingParams struct {
	Uid  domain.UserId
	Ping float64
}

type UpdatePingResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) UpdatePing(ctx context.Context, params *UpdatePingParams) (UpdatePingResponse, error) {
	if err := s.validatePing(params.Ping); err != nil {
		return UpdatePingResponse{}, err
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return UpdatePingResponse{}, ErrNotInRoom
	}

	s.state.Pings.Set(params.Uid, params.Ping)

	return UpdatePingResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}

type SetReadyStateParams struct {
	Uid   domain.UserId
	State domain.ReadyState
}

type SetReadyStateResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

// SetReadyState accepts Ready and NotReady from clients; Loading is
// assigned only by the server on active-entry changes.
func (s *service) SetReadyState(ctx context.Context, params *SetReadyStateParams) (SetReadyStateResponse, error) {
	if params.State != domain.Ready && params.State != domain.NotReady {
		return SetReadyStateResponse{}, fmt.Errorf("%w: invalid ready state", ErrValidation)
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return SetReadyStateResponse{}, ErrNotInRoom
	}

	s.state.Readiness.Set(rid, params.Uid, params.State)

	return SetReadyStateResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}
