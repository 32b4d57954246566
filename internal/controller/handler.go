package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/internal/service/room"
	"github.com/syncmiru/server/pkg/ctxlogger"
)

type handshakeInput struct {
	Jwt string `json:"jwt"`
}

// serveWS is the single websocket entrypoint. The first message must be the
// auth handshake; everything after that is routed through the event mux
// until the connection dies.
func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()
	defer c.sender.Release(conn)

	conn.SetReadDeadline(time.Now().Add(c.authTimeout))

	var handshake handshakeInput
	if err := conn.ReadJSON(&handshake); err != nil {
		c.logger.DebugContext(r.Context(), "failed to read handshake", "error", err)
		c.sender.ToConn(r.Context(), conn, &wssender.Output{Type: room.EventAuthError})
		return
	}

	authResp, err := c.roomService.Authenticate(r.Context(), &room.AuthenticateParams{
		Jwt:  handshake.Jwt,
		Conn: conn,
	})
	if err != nil {
		c.logger.InfoContext(r.Context(), "authentication failed", "error", err)
		c.sender.ToConn(r.Context(), conn, &wssender.Output{Type: room.EventAuthError})
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx := context.WithValue(r.Context(), userIdCtxKey, authResp.Profile.Id)
	ctx = ctxlogger.AppendCtx(ctx, slog.Int("uid", int(authResp.Profile.Id)))
	defer c.disconnect(ctx, conn)

	c.sender.ToConn(ctx, conn, &wssender.Output{
		Type:    room.EventMyProfile,
		Payload: authResp.Profile,
	})

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c *controller) disconnect(ctx context.Context, conn *websocket.Conn) {
	resp, err := c.roomService.DisconnectUser(ctx, conn)
	if err != nil {
		c.logger.DebugContext(ctx, "failed to disconnect user", "error", err)
		return
	}

	if resp.HadRoom {
		c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
			Type: room.EventUserRoomDisconnect,
			Payload: map[string]any{
				"rid": resp.Rid,
				"uid": resp.Uid,
			},
		})
		c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
			Type:    room.EventOnline,
			Payload: resp.Members,
		})
	}
}
