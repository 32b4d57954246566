package room

// Event labels, bit-stable for client compatibility.
const (
	// server -> client
	EventMyProfile          = "my-profile"
	EventOnline             = "online"
	EventUserRoomJoin       = "user_room_join"
	EventUserRoomChange     = "user_room_change"
	EventUserRoomDisconnect = "user_room_disconnect"
	EventRoomUserPingChange = "room_user_ping_change"
	EventActiveEntryChange  = "active_entry_change"
	EventPlay               = "play"
	EventPause              = "pause"
	EventSeek               = "seek"
	EventPlaybackSpeed      = "playback_speed"
	EventUserReadyState     = "user_ready_state_change"
	EventMinorDesyncStart   = "minor_desync_start"
	EventMinorDesyncStop    = "minor_desync_stop"
	EventMajorDesyncSeek    = "major_desync_seek"
	EventPlaylistAdd        = "playlist_add"
	EventPlaylistDelete     = "playlist_delete"
	EventPlaylistOrder      = "playlist_order"
	EventJoinedRoomInfo     = "joined_room_info"
	EventAuthError          = "auth-error"
)
