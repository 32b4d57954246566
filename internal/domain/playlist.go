package domain

import (
	"errors"
	"fmt"
	"net/url"
)

var ErrInvalidPlaylistEntry = errors.New("invalid playlist entry")

type EntryKind string

const (
	EntryKindVideo     EntryKind = "video"
	EntryKindUrl       EntryKind = "url"
	EntryKindSubtitles EntryKind = "subtitles"
)

// PlaylistEntry is a tagged variant: exactly one of the three kinds.
// Video and Subtitles reference a server-hosted file by source and path,
// Url points at an external streamable source.
type PlaylistEntry struct {
	Kind   EntryKind `json:"type"`
	Source string    `json:"source,omitempty"`
	Path   string    `json:"path,omitempty"`
	Url    string    `json:"url,omitempty"`
}

func NewVideoEntry(source, path string) PlaylistEntry {
	return PlaylistEntry{Kind: EntryKindVideo, Source: source, Path: path}
}

func NewUrlEntry(rawUrl string) PlaylistEntry {
	return PlaylistEntry{Kind: EntryKindUrl, Url: rawUrl}
}

func NewSubtitlesEntry(source, path string) PlaylistEntry {
	return PlaylistEntry{Kind: EntryKindSubtitles, Source: source, Path: path}
}

func (e PlaylistEntry) Validate() error {
	switch e.Kind {
	case EntryKindVideo, EntryKindSubtitles:
		if e.Source == "" || e.Path == "" {
			return fmt.Errorf("%w: empty source or path", ErrInvalidPlaylistEntry)
		}
		if e.Url != "" {
			return fmt.Errorf("%w: file entry carries an url", ErrInvalidPlaylistEntry)
		}
	case EntryKindUrl:
		u, err := url.Parse(e.Url)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: malformed url", ErrInvalidPlaylistEntry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPlaylistEntry, e.Kind)
	}

	return nil
}

// IsPlayable reports whether the entry can become the active entry.
// Subtitles only attach to the current video.
func (e PlaylistEntry) IsPlayable() bool {
	switch e.Kind {
	case EntryKindVideo, EntryKindUrl:
		return true
	case EntryKindSubtitles:
		return false
	default:
		return false
	}
}
