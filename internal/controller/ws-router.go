package controller

import (
	"github.com/syncmiru/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())
	mux.OnError(c.wsErrorHook)

	// membership
	wsrouter.Handle(mux, "join_room", c.handleJoinRoom)
	wsrouter.Handle(mux, "leave_room", c.handleLeaveRoom)
	wsrouter.Handle(mux, "ping", c.handlePing)
	wsrouter.Handle(mux, "user_ready_state_change", c.handleReadyState)

	// playback
	wsrouter.Handle(mux, "timestamp_tick", c.handleTimestampTick)
	wsrouter.Handle(mux, "set_active_entry", c.handleSetActiveEntry)
	wsrouter.Handle(mux, "play", c.handlePlay)
	wsrouter.Handle(mux, "pause", c.handlePause)
	wsrouter.Handle(mux, "seek", c.handleSeek)
	wsrouter.Handle(mux, "set_playback_speed", c.handleSetPlaybackSpeed)

	// playlist
	wsrouter.Handle(mux, "add_video_files", c.handleAddVideoFiles)
	wsrouter.Handle(mux, "add_urls", c.handleAddUrls)
	wsrouter.Handle(mux, "add_subtitles", c.handleAddSubtitles)
	wsrouter.Handle(mux, "delete_entry", c.handleDeleteEntry)
	wsrouter.Handle(mux, "reorder", c.handleReorder)

	return mux
}
