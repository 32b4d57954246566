package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/internal/service/room"
	"github.com/syncmiru/server/pkg/validator"
	"github.com/syncmiru/server/pkg/wsrouter"
)

type iRoomService interface {
	Authenticate(context.Context, *room.AuthenticateParams) (room.AuthenticateResponse, error)
	DisconnectUser(context.Context, *websocket.Conn) (room.DisconnectUserResponse, error)

	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	UpdatePing(context.Context, *room.UpdatePingParams) (room.UpdatePingResponse, error)
	SetReadyState(context.Context, *room.SetReadyStateParams) (room.SetReadyStateResponse, error)
	IngestTimestamp(context.Context, *room.IngestTimestampParams) error

	AddEntries(context.Context, *room.AddEntriesParams) (room.AddEntriesResponse, error)
	DeleteEntry(context.Context, *room.DeleteEntryParams) (room.DeleteEntryResponse, error)
	Reorder(context.Context, *room.ReorderParams) (room.ReorderResponse, error)

	SetActiveEntry(context.Context, *room.SetActiveEntryParams) (room.SetActiveEntryResponse, error)
	Play(context.Context, *room.PlayParams) (room.PlayResponse, error)
	Pause(context.Context, *room.PauseParams) (room.PauseResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	SetPlaybackSpeed(context.Context, *room.SetPlaybackSpeedParams) (room.SetPlaybackSpeedResponse, error)

	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	UpdateRoomSettings(context.Context, *room.UpdateRoomSettingsParams) (room.UpdateRoomSettingsResponse, error)
	ListRooms(context.Context) []room.RoomListItem
	CreateUser(context.Context, *room.CreateUserParams) (room.CreateUserResponse, error)
}

type iSender interface {
	ToUser(ctx context.Context, uid domain.UserId, out *wssender.Output)
	ToConn(ctx context.Context, conn *websocket.Conn, out *wssender.Output)
	ToUsers(ctx context.Context, uids []domain.UserId, out *wssender.Output)
	ToUsersExcept(ctx context.Context, uids []domain.UserId, except domain.UserId, out *wssender.Output)
	Release(conn *websocket.Conn)
}

type Config struct {
	AuthTimeout time.Duration
}

type controller struct {
	roomService iRoomService
	sender      iSender
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
	authTimeout time.Duration

	droppedMessages atomic.Uint64
}

func NewController(roomService iRoomService, sender iSender, cfg *Config, logger *slog.Logger) *controller {
	c := &controller{
		roomService: roomService,
		sender:      sender,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate:    validator.NewValidator(),
		logger:      logger,
		authTimeout: cfg.AuthTimeout,
	}
	if c.authTimeout <= 0 {
		c.authTimeout = 10 * time.Second
	}
	c.wsmux = c.getWSRouter()

	return c
}
