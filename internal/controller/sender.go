package controller

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/pkg/wsrouter"
)

// Ack is the typed reply envelope for request/reply events.
type Ack struct {
	AckId   uint64 `json:"ack_id"`
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

const (
	ackStatusOk  = "ok"
	ackStatusErr = "err"
)

// ackOk replies to a request/reply event; events sent without an ack id are
// fire-and-forget and get no reply.
func (c *controller) ackOk(ctx context.Context, conn *websocket.Conn, payload any) error {
	ackId, ok := wsrouter.GetAckIdFromCtx(ctx)
	if !ok {
		return nil
	}

	c.sender.ToConn(ctx, conn, &wssender.Output{
		Type:    "ack",
		Payload: Ack{AckId: ackId, Status: ackStatusOk, Payload: payload},
	})

	return nil
}

// ackErr maps the engine error to its wire kind and replies. For
// fire-and-forget events the error is counted and dropped. The original
// error is returned so the router's error hook can log it.
func (c *controller) ackErr(ctx context.Context, conn *websocket.Conn, err error) error {
	ackId, ok := wsrouter.GetAckIdFromCtx(ctx)
	if !ok {
		c.droppedMessages.Add(1)
		return err
	}

	c.sender.ToConn(ctx, conn, &wssender.Output{
		Type:    "ack",
		Payload: Ack{AckId: ackId, Status: ackStatusErr, Kind: ackErrKind(err)},
	})

	return err
}
