package wsrouter

import "context"

type ctxKey int

const (
	messageTypeKey ctxKey = iota
	ackIdKey
)

func GetMessageTypeFromCtx(ctx context.Context) string {
	messageType, ok := ctx.Value(messageTypeKey).(string)
	if !ok {
		return ""
	}

	return messageType
}

func GetAckIdFromCtx(ctx context.Context) (uint64, bool) {
	ackId, ok := ctx.Value(ackIdKey).(uint64)
	return ackId, ok
}
