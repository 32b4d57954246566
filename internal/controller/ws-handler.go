package controller

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/wssender"
	"github.com/syncmiru/server/internal/service/room"
)

type EmptyInput struct{}

type JoinRoomInput struct {
	Rid  domain.RoomId `json:"rid"`
	Ping float64       `json:"ping"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, input JoinRoomInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		Uid:  uid,
		Rid:  input.Rid,
		Ping: input.Ping,
	})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to join room: %w", err))
	}

	if resp.HadOldRoom {
		change := &wssender.Output{
			Type: room.EventUserRoomChange,
			Payload: map[string]any{
				"old_rid": resp.OldRid,
				"new_rid": input.Rid,
				"uid":     uid,
			},
		}
		c.sender.ToUsers(ctx, resp.OldMembers, change)
		c.sender.ToUsersExcept(ctx, resp.NewMembers, uid, change)
		c.sender.ToUsers(ctx, resp.OldMembers, &wssender.Output{
			Type:    room.EventOnline,
			Payload: resp.OldMembers,
		})
	} else {
		c.sender.ToUsersExcept(ctx, resp.NewMembers, uid, &wssender.Output{
			Type: room.EventUserRoomJoin,
			Payload: map[string]any{
				"rid": input.Rid,
				"uid": uid,
			},
		})
	}

	c.sender.ToUsers(ctx, resp.NewMembers, &wssender.Output{
		Type:    room.EventOnline,
		Payload: resp.NewMembers,
	})

	c.sender.ToConn(ctx, conn, &wssender.Output{
		Type:    room.EventJoinedRoomInfo,
		Payload: resp.Info,
	})

	return c.ackOk(ctx, conn, nil)
}

func (c *controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{Uid: uid})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to leave room: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type: room.EventUserRoomDisconnect,
		Payload: map[string]any{
			"rid": resp.Rid,
			"uid": uid,
		},
	})
	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type:    room.EventOnline,
		Payload: resp.Members,
	})

	return c.ackOk(ctx, conn, nil)
}

type PingInput struct {
	Ping float64 `json:"ping"`
}

func (c *controller) handlePing(ctx context.Context, conn *websocket.Conn, input PingInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.UpdatePing(ctx, &room.UpdatePingParams{Uid: uid, Ping: input.Ping})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to update ping: %w", err))
	}

	c.sender.ToUsersExcept(ctx, resp.Members, uid, &wssender.Output{
		Type: room.EventRoomUserPingChange,
		Payload: map[string]any{
			"uid":  uid,
			"ping": input.Ping,
		},
	})

	return nil
}

type ReadyStateInput struct {
	ReadyState domain.ReadyState `json:"ready_state"`
}

func (c *controller) handleReadyState(ctx context.Context, conn *websocket.Conn, input ReadyStateInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.SetReadyState(ctx, &room.SetReadyStateParams{Uid: uid, State: input.ReadyState})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to set ready state: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type: room.EventUserReadyState,
		Payload: map[string]any{
			"uid":         uid,
			"ready_state": input.ReadyState,
		},
	})

	return c.ackOk(ctx, conn, nil)
}

type TimestampTickInput struct {
	Value  float64 `json:"value"`
	Status int     `json:"status"`
}

// timestamp_tick is fire-and-forget: nothing is broadcast, only the desync
// controller consumes the sample.
func (c *controller) handleTimestampTick(ctx context.Context, conn *websocket.Conn, input TimestampTickInput) error {
	uid := c.getUserIdFromCtx(ctx)

	if err := c.roomService.IngestTimestamp(ctx, &room.IngestTimestampParams{Uid: uid, Value: input.Value}); err != nil {
		c.droppedMessages.Add(1)
		return nil
	}

	return nil
}

type SetActiveEntryInput struct {
	EntryId *domain.PlaylistEntryId `json:"playlist_entry_id"`
}

func (c *controller) handleSetActiveEntry(ctx context.Context, conn *websocket.Conn, input SetActiveEntryInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.SetActiveEntry(ctx, &room.SetActiveEntryParams{Uid: uid, EntryId: input.EntryId})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to set active entry: %w", err))
	}

	c.broadcastActiveEntryChange(ctx, resp.Members, resp.EntryId)

	return c.ackOk(ctx, conn, nil)
}

func (c *controller) broadcastActiveEntryChange(ctx context.Context, members []domain.UserId, eid *domain.PlaylistEntryId) {
	c.sender.ToUsers(ctx, members, &wssender.Output{
		Type: room.EventActiveEntryChange,
		Payload: map[string]any{
			"entry_id": eid,
		},
	})
}

func (c *controller) handlePlay(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.Play(ctx, &room.PlayParams{Uid: uid})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to play: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{Type: room.EventPlay})

	return c.ackOk(ctx, conn, nil)
}

func (c *controller) handlePause(ctx context.Context, conn *websocket.Conn, _ EmptyInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.Pause(ctx, &room.PauseParams{Uid: uid})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to pause: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{Type: room.EventPause})

	return c.ackOk(ctx, conn, nil)
}

type SeekInput struct {
	T float64 `json:"t"`
}

func (c *controller) handleSeek(ctx context.Context, conn *websocket.Conn, input SeekInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.Seek(ctx, &room.SeekParams{Uid: uid, T: input.T})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to seek: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type:    room.EventSeek,
		Payload: map[string]float64{"t": input.T},
	})

	return c.ackOk(ctx, conn, nil)
}

type SetPlaybackSpeedInput struct {
	Value decimal.Decimal `json:"value"`
}

func (c *controller) handleSetPlaybackSpeed(ctx context.Context, conn *websocket.Conn, input SetPlaybackSpeedInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.SetPlaybackSpeed(ctx, &room.SetPlaybackSpeedParams{Uid: uid, Value: input.Value})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to set playback speed: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type:    room.EventPlaybackSpeed,
		Payload: map[string]any{"value": input.Value},
	})

	return c.ackOk(ctx, conn, nil)
}

type AddVideoFilesInput struct {
	FullPaths []string `json:"full_paths"`
}

func (c *controller) handleAddVideoFiles(ctx context.Context, conn *websocket.Conn, input AddVideoFilesInput) error {
	entries, err := room.VideoEntriesFromPaths(input.FullPaths)
	if err != nil {
		return c.ackErr(ctx, conn, err)
	}

	return c.addEntries(ctx, conn, entries)
}

type AddUrlsInput struct {
	Urls []string `json:"urls"`
}

func (c *controller) handleAddUrls(ctx context.Context, conn *websocket.Conn, input AddUrlsInput) error {
	return c.addEntries(ctx, conn, room.UrlEntries(input.Urls))
}

type AddSubtitlesInput struct {
	FullPaths []string `json:"full_paths"`
}

func (c *controller) handleAddSubtitles(ctx context.Context, conn *websocket.Conn, input AddSubtitlesInput) error {
	entries, err := room.SubtitleEntriesFromPaths(input.FullPaths)
	if err != nil {
		return c.ackErr(ctx, conn, err)
	}

	return c.addEntries(ctx, conn, entries)
}

func (c *controller) addEntries(ctx context.Context, conn *websocket.Conn, entries []domain.PlaylistEntry) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.AddEntries(ctx, &room.AddEntriesParams{Uid: uid, Entries: entries})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to add entries: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type: room.EventPlaylistAdd,
		Payload: map[string]any{
			"uid":     uid,
			"entries": resp.Added,
		},
	})

	return c.ackOk(ctx, conn, nil)
}

type DeleteEntryInput struct {
	EntryId domain.PlaylistEntryId `json:"playlist_entry_id"`
}

func (c *controller) handleDeleteEntry(ctx context.Context, conn *websocket.Conn, input DeleteEntryInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.DeleteEntry(ctx, &room.DeleteEntryParams{Uid: uid, EntryId: input.EntryId})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to delete entry: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type: room.EventPlaylistDelete,
		Payload: map[string]any{
			"uid":      uid,
			"entry_id": input.EntryId,
		},
	})

	if resp.ClearedActive {
		c.broadcastActiveEntryChange(ctx, resp.Members, nil)
	}

	return c.ackOk(ctx, conn, nil)
}

type ReorderInput struct {
	PlaylistOrder []domain.PlaylistEntryId `json:"playlist_order"`
}

func (c *controller) handleReorder(ctx context.Context, conn *websocket.Conn, input ReorderInput) error {
	uid := c.getUserIdFromCtx(ctx)

	resp, err := c.roomService.Reorder(ctx, &room.ReorderParams{Uid: uid, Order: input.PlaylistOrder})
	if err != nil {
		return c.ackErr(ctx, conn, fmt.Errorf("failed to reorder playlist: %w", err))
	}

	c.sender.ToUsers(ctx, resp.Members, &wssender.Output{
		Type: room.EventPlaylistOrder,
		Payload: map[string]any{
			"uid":   uid,
			"order": input.PlaylistOrder,
		},
	})

	return c.ackOk(ctx, conn, nil)
}
