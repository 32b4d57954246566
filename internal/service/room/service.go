package room

import (
	"context"
	"crypto/rsa"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/state"
	"github.com/syncmiru/server/internal/repository/user"
	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/pkg/clock"
)

var (
	ErrAuthFailed       = errors.New("authentication failed")
	ErrValidation       = errors.New("validation failed")
	ErrNotInRoom        = errors.New("user is not in a room")
	ErrNotAllReady      = errors.New("not all members are ready")
	ErrNoActiveEntry    = errors.New("no active playlist entry")
	ErrPlaylistLimit    = errors.New("playlist limit reached")
	ErrRoomNotFound     = state.ErrRoomNotFound
	ErrEntryNotFound    = state.ErrEntryNotFound
	ErrOrderMismatch    = state.ErrOrderMismatch
	ErrEntryNotPlayable = state.ErrEntryNotPlayable
)

type iUserStore interface {
	SessionValid(ctx context.Context, uid domain.UserId, token string) (bool, error)
	GetMyProfile(ctx context.Context, uid domain.UserId) (domain.Profile, error)
	NewUser(ctx context.Context, params *user.NewUserParams) (domain.UserId, error)
}

type iMailer interface {
	SendVerification(ctx context.Context, email string)
	SendRoomInvite(ctx context.Context, email, roomName string)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, uid domain.UserId) (uuid.UUID, error)
	RemoveByConn(conn *websocket.Conn) (domain.UserId, error)
	RemoveByUserId(uid domain.UserId) (*websocket.Conn, error)
	GetConn(uid domain.UserId) (*websocket.Conn, error)
	GetUserId(conn *websocket.Conn) (domain.UserId, error)
}

type iSender interface {
	ToUser(ctx context.Context, uid domain.UserId, out *wssender.Output)
}

type Config struct {
	PublicKey       *rsa.PublicKey
	DesyncTick      time.Duration
	TimestampMaxAge time.Duration
	PingMax         float64
	RoomNameMaxLen  int
	PlaylistLimit   int
}

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.DesyncTick <= 0 {
		out.DesyncTick = 250 * time.Millisecond
	}
	if out.TimestampMaxAge <= 0 {
		out.TimestampMaxAge = 4000 * time.Millisecond
	}
	if out.PingMax <= 0 {
		out.PingMax = 10
	}
	if out.RoomNameMaxLen <= 0 {
		out.RoomNameMaxLen = 64
	}
	if out.PlaylistLimit <= 0 {
		out.PlaylistLimit = 100
	}

	return out
}

type service struct {
	userStore iUserStore
	connRepo  iConnRepo
	mailer    iMailer
	sender    iSender
	state     *state.Store
	clock     clock.Clock
	logger    *slog.Logger
	cfg       Config

	desyncCmd chan DesyncCommand
}

func NewService(
	userStore iUserStore,
	connRepo iConnRepo,
	mailer iMailer,
	sender iSender,
	st *state.Store,
	clk clock.Clock,
	cfg *Config,
	logger *slog.Logger,
) *service {
	return &service{
		userStore: userStore,
		connRepo:  connRepo,
		mailer:    mailer,
		sender:    sender,
		state:     st,
		clock:     clk,
		logger:    logger,
		cfg:       cfg.withDefaults(),
		desyncCmd: make(chan DesyncCommand, 8),
	}
}
