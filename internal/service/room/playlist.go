package room

import (
	"context"
	"fmt"
	"path"

	"github.com/syncmiru/server/internal/domain"
)

type AddEntriesParams struct {
	Uid     domain.UserId
	Entries []domain.PlaylistEntry
}

type AddEntriesResponse struct {
	Rid     domain.RoomId
	Added   map[domain.PlaylistEntryId]domain.PlaylistEntry
	Members []domain.UserId
}

// AddEntries validates and appends the given entries to the sender's room
// playlist. Mutation happens only after every entry has validated.
func (s *service) AddEntries(ctx context.Context, params *AddEntriesParams) (AddEntriesResponse, error) {
	if len(params.Entries) == 0 {
		return AddEntriesResponse{}, fmt.Errorf("%w: no entries", ErrValidation)
	}
	for _, entry := range params.Entries {
		if err := entry.Validate(); err != nil {
			return AddEntriesResponse{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return AddEntriesResponse{}, ErrNotInRoom
	}

	if s.state.Playlist.Len(rid)+len(params.Entries) > s.cfg.PlaylistLimit {
		return AddEntriesResponse{}, ErrPlaylistLimit
	}

	added, err := s.state.Playlist.Append(rid, params.Entries)
	if err != nil {
		return AddEntriesResponse{}, fmt.Errorf("failed to append entries: %w", err)
	}

	return AddEntriesResponse{
		Rid:     rid,
		Added:   added,
		Members: s.state.Membership.Members(rid),
	}, nil
}

// VideoEntriesFromPaths builds Video entries from server-relative paths.
// The source is the first path element, matching how the file host lays
// out its shares.
func VideoEntriesFromPaths(fullPaths []string) ([]domain.PlaylistEntry, error) {
	return entriesFromPaths(fullPaths, domain.NewVideoEntry)
}

func SubtitleEntriesFromPaths(fullPaths []string) ([]domain.PlaylistEntry, error) {
	return entriesFromPaths(fullPaths, domain.NewSubtitlesEntry)
}

func entriesFromPaths(fullPaths []string, build func(source, path string) domain.PlaylistEntry) ([]domain.PlaylistEntry, error) {
	entries := make([]domain.PlaylistEntry, 0, len(fullPaths))
	for _, fullPath := range fullPaths {
		cleaned := path.Clean(fullPath)
		if cleaned == "" || cleaned == "." || cleaned == "/" {
			return nil, fmt.Errorf("%w: empty path", ErrValidation)
		}

		source, rest, found := splitSource(cleaned)
		if !found {
			return nil, fmt.Errorf("%w: path %q has no source prefix", ErrValidation, fullPath)
		}
		entries = append(entries, build(source, rest))
	}

	return entries, nil
}

func splitSource(p string) (string, string, bool) {
	for p != "" && p[0] == '/' {
		p = p[1:]
	}
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			return p[:i], p[i+1:], i > 0 && i+1 < len(p)
		}
	}

	return "", "", false
}

func UrlEntries(urls []string) []domain.PlaylistEntry {
	entries := make([]domain.PlaylistEntry, 0, len(urls))
	for _, u := range urls {
		entries = append(entries, domain.NewUrlEntry(u))
	}

	return entries
}

type DeleteEntryParams struct {
	Uid     domain.UserId
	EntryId domain.PlaylistEntryId
}

type DeleteEntryResponse struct {
	Rid           domain.RoomId
	Members       []domain.UserId
	ClearedActive bool
}

// DeleteEntry removes the entry; deleting the active entry clears it and
// pauses the room.
func (s *service) DeleteEntry(ctx context.Context, params *DeleteEntryParams) (DeleteEntryResponse, error) {
	if params.EntryId < 1 {
		return DeleteEntryResponse{}, fmt.Errorf("%w: entry id must be >= 1", ErrValidation)
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return DeleteEntryResponse{}, ErrNotInRoom
	}

	pb, err := s.state.Playback.Snapshot(rid)
	if err != nil {
		return DeleteEntryResponse{}, fmt.Errorf("failed to snapshot playback: %w", err)
	}

	if err := s.state.Playlist.Delete(rid, params.EntryId); err != nil {
		return DeleteEntryResponse{}, err
	}

	resp := DeleteEntryResponse{Rid: rid, Members: s.state.Membership.Members(rid)}

	if pb.ActiveEntry != nil && *pb.ActiveEntry == params.EntryId {
		if err := s.state.Playback.SetActiveEntry(rid, nil, s.clock.Now()); err != nil {
			return DeleteEntryResponse{}, fmt.Errorf("failed to clear active entry: %w", err)
		}
		resp.ClearedActive = true

		if !s.state.Playback.AnyPlaying() {
			s.sleepDesync()
		}
	}

	return resp, nil
}

type ReorderParams struct {
	Uid   domain.UserId
	Order []domain.PlaylistEntryId
}

type ReorderResponse struct {
	Rid     domain.RoomId
	Members []domain.UserId
}

func (s *service) Reorder(ctx context.Context, params *ReorderParams) (ReorderResponse, error) {
	for _, eid := range params.Order {
		if eid < 1 {
			return ReorderResponse{}, fmt.Errorf("%w: entry id must be >= 1", ErrValidation)
		}
	}

	rid, ok := s.state.Membership.RoomOf(params.Uid)
	if !ok {
		return ReorderResponse{}, ErrNotInRoom
	}

	if err := s.state.Playlist.Reorder(rid, params.Order); err != nil {
		return ReorderResponse{}, err
	}

	return ReorderResponse{
		Rid:     rid,
		Members: s.state.Membership.Members(rid),
	}, nil
}
