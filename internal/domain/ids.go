package domain

// Opaque identifiers. Connection handles are session-scoped uuids assigned
// by the transport and never leave the connection repository.
type (
	UserId          int32
	RoomId          int32
	PlaylistEntryId int32
)
