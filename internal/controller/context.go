package controller

import (
	"context"

	"github.com/syncmiru/server/internal/domain"
)

type contextKey int

const userIdCtxKey contextKey = iota

func (c *controller) getUserIdFromCtx(ctx context.Context) domain.UserId {
	uid, ok := ctx.Value(userIdCtxKey).(domain.UserId)
	if !ok {
		return 0
	}

	return uid
}
