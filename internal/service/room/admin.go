package room

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/user"
)

type CreateRoomParams struct {
	Settings domain.RoomSettings
	Invites  []string
}

type CreateRoomResponse struct {
	Rid domain.RoomId
}

// CreateRoom is the administrative event that brings a room into existence:
// registry entry, empty playlist and a paused playback state anchored at
// zero. Invite mails are fire-and-forget.
func (s *service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	if err := s.validateSettings(&params.Settings); err != nil {
		return CreateRoomResponse{}, err
	}

	rid := s.state.Rooms.Create(params.Settings)
	s.state.Playback.EnsureRoom(rid, params.Settings.PlaybackSpeed, s.clock.Now())
	s.state.Playlist.EnsureRoom(rid)

	for _, email := range params.Invites {
		s.mailer.SendRoomInvite(ctx, email, params.Settings.Name)
	}

	s.logger.InfoContext(ctx, "room created", "rid", rid, "name", params.Settings.Name)

	return CreateRoomResponse{Rid: rid}, nil
}

type UpdateRoomSettingsParams struct {
	Rid      domain.RoomId
	Settings domain.RoomSettings
}

type UpdateRoomSettingsResponse struct {
	Members []domain.UserId
}

// UpdateRoomSettings replaces the stored settings and applies the speed to
// the live playback state, re-anchored so the expected timestamp stays
// continuous across the change.
func (s *service) UpdateRoomSettings(ctx context.Context, params *UpdateRoomSettingsParams) (UpdateRoomSettingsResponse, error) {
	if err := s.validateSettings(&params.Settings); err != nil {
		return UpdateRoomSettingsResponse{}, err
	}

	if err := s.state.Rooms.SetSettings(params.Rid, params.Settings); err != nil {
		return UpdateRoomSettingsResponse{}, err
	}
	if _, err := s.state.Playback.SetSpeed(params.Rid, params.Settings.PlaybackSpeed, s.clock.Now()); err != nil {
		return UpdateRoomSettingsResponse{}, fmt.Errorf("failed to apply playback speed: %w", err)
	}

	return UpdateRoomSettingsResponse{Members: s.state.Membership.Members(params.Rid)}, nil
}

type CreateUserParams struct {
	Username    string
	Displayname string
	Email       string
	AvatarUrl   string
}

type CreateUserResponse struct {
	Uid domain.UserId
}

// CreateUser registers an account in the user store and queues the
// verification mail. Sessions are minted by the login path, not here.
func (s *service) CreateUser(ctx context.Context, params *CreateUserParams) (CreateUserResponse, error) {
	uid, err := s.userStore.NewUser(ctx, &user.NewUserParams{
		Username:    params.Username,
		Displayname: params.Displayname,
		Email:       params.Email,
		AvatarUrl:   params.AvatarUrl,
	})
	if err != nil {
		return CreateUserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.mailer.SendVerification(ctx, params.Email)

	s.logger.InfoContext(ctx, "user created", "uid", uid, "username", params.Username)

	return CreateUserResponse{Uid: uid}, nil
}

type RoomListItem struct {
	Rid      domain.RoomId       `json:"rid"`
	Settings domain.RoomSettings `json:"settings"`
	Members  int                 `json:"members"`
}

func (s *service) ListRooms(ctx context.Context) []RoomListItem {
	ids := s.state.Rooms.Ids()
	out := make([]RoomListItem, 0, len(ids))
	for _, rid := range ids {
		settings, err := s.state.Rooms.Settings(rid)
		if err != nil {
			continue
		}
		out = append(out, RoomListItem{
			Rid:      rid,
			Settings: settings,
			Members:  len(s.state.Membership.Members(rid)),
		})
	}

	return out
}

func (s *service) validateSettings(settings *domain.RoomSettings) error {
	if settings.Name == "" || len(settings.Name) > s.cfg.RoomNameMaxLen {
		return fmt.Errorf("%w: room name must be non-empty and at most %d characters", ErrValidation, s.cfg.RoomNameMaxLen)
	}
	if settings.PlaybackSpeed.LessThan(domain.MinPlaybackSpeed) || settings.PlaybackSpeed.GreaterThan(domain.MaxPlaybackSpeed) {
		return fmt.Errorf("%w: playback speed must be within [0.25, 4.00]", ErrValidation)
	}
	if settings.DesyncTolerance.IsNegative() {
		return fmt.Errorf("%w: desync tolerance must be >= 0", ErrValidation)
	}
	if settings.MinorDesyncPlaybackSlow.IsNegative() {
		return fmt.Errorf("%w: minor desync playback slow must be >= 0", ErrValidation)
	}
	if settings.MajorDesyncMin.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: major desync min must be > 0", ErrValidation)
	}

	return nil
}
