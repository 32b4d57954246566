package room

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncmiru/server/internal/domain"
)

// The join snapshot crosses the wire as one document; every field has to
// come back intact, decimals included.
func TestJoinedRoomInfoJSONRoundTrip(t *testing.T) {
	active := domain.PlaylistEntryId(2)
	in := JoinedRoomInfo{
		RoomId:        7,
		Settings:      testSettings(),
		PlaybackSpeed: decimal.NewFromFloat(1.25),
		Pings:         map[domain.UserId]float64{1: 0.05, 2: 0.2},
		Readiness:     map[domain.UserId]domain.ReadyState{1: domain.Ready, 2: domain.Loading},
		Entries: map[domain.PlaylistEntryId]domain.PlaylistEntry{
			1: domain.NewUrlEntry("https://example.com/a"),
			2: domain.NewVideoEntry("share1", "movies/b.mkv"),
			3: domain.NewSubtitlesEntry("share1", "movies/b.srt"),
		},
		Order:             []domain.PlaylistEntryId{2, 1, 3},
		ActiveEntry:       &active,
		Subtitles:         []domain.PlaylistEntryId{3},
		Playing:           true,
		ExpectedTimestamp: 123.5,
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out JoinedRoomInfo
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, in.RoomId, out.RoomId)
	assert.Equal(t, in.Settings.Name, out.Settings.Name)
	assert.True(t, out.Settings.PlaybackSpeed.Equal(in.Settings.PlaybackSpeed))
	assert.True(t, out.Settings.MinorDesyncPlaybackSlow.Equal(in.Settings.MinorDesyncPlaybackSlow))
	assert.True(t, out.Settings.MajorDesyncMin.Equal(in.Settings.MajorDesyncMin))
	assert.True(t, out.PlaybackSpeed.Equal(in.PlaybackSpeed))
	assert.Equal(t, in.Pings, out.Pings)
	assert.Equal(t, in.Readiness, out.Readiness)
	assert.Equal(t, in.Entries, out.Entries)
	assert.Equal(t, in.Order, out.Order)
	require.NotNil(t, out.ActiveEntry)
	assert.Equal(t, active, *out.ActiveEntry)
	assert.Equal(t, in.Subtitles, out.Subtitles)
	assert.Equal(t, in.Playing, out.Playing)
	assert.Equal(t, in.ExpectedTimestamp, out.ExpectedTimestamp)

	// a cleared active entry stays null, not zero
	in.ActiveEntry = nil
	raw, err = json.Marshal(in)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Nil(t, out.ActiveEntry)
}
