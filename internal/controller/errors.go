package controller

import (
	"errors"

	"github.com/syncmiru/server/internal/service/room"
)

// Ack error kinds, stable on the wire.
const (
	ackErrValidation = "validation_error"
	ackErrConflict   = "conflict_error"
	ackErrNotFound   = "not_found_error"
	ackErrInternal   = "internal_error"
)

func ackErrKind(err error) string {
	switch {
	case errors.Is(err, room.ErrValidation):
		return ackErrValidation
	case errors.Is(err, room.ErrNotAllReady),
		errors.Is(err, room.ErrNoActiveEntry),
		errors.Is(err, room.ErrOrderMismatch),
		errors.Is(err, room.ErrPlaylistLimit),
		errors.Is(err, room.ErrEntryNotPlayable):
		return ackErrConflict
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrEntryNotFound),
		errors.Is(err, room.ErrNotInRoom):
		return ackErrNotFound
	default:
		return ackErrInternal
	}
}
