package state

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrUserNotInRoom    = errors.New("user not in room")
	ErrEntryNotFound    = errors.New("playlist entry not found")
	ErrOrderMismatch    = errors.New("order is not a permutation of the playlist")
	ErrAlreadyInRoom    = errors.New("user already in room")
	ErrRoomNameTaken    = errors.New("room name already taken")
	ErrEntryNotPlayable = errors.New("entry is not playable")
)
