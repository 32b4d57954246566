package room

import (
	"github.com/shopspring/decimal"

	"github.com/syncmiru/server/internal/domain"
)

// JoinedRoomInfo is the full snapshot the joiner receives right after a
// successful join so its view starts consistent with the room.
type JoinedRoomInfo struct {
	RoomId            domain.RoomId                                     `json:"rid"`
	Settings          domain.RoomSettings                               `json:"settings"`
	PlaybackSpeed     decimal.Decimal                                   `json:"playback_speed"`
	Pings             map[domain.UserId]float64                         `json:"pings"`
	Readiness         map[domain.UserId]domain.ReadyState               `json:"readiness"`
	Entries           map[domain.PlaylistEntryId]domain.PlaylistEntry   `json:"entries"`
	Order             []domain.PlaylistEntryId                          `json:"order"`
	ActiveEntry       *domain.PlaylistEntryId                           `json:"active_entry"`
	Subtitles         []domain.PlaylistEntryId                          `json:"subtitles"`
	Playing           bool                                              `json:"playing"`
	ExpectedTimestamp float64                                           `json:"expected_timestamp"`
}
