package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Speeds and thresholds must survive the wire without float drift,
// including both ends of the allowed speed range.
func TestRoomSettingsJSONRoundTrip(t *testing.T) {
	for _, speed := range []decimal.Decimal{MinPlaybackSpeed, MaxPlaybackSpeed, decimal.NewFromFloat(1.25)} {
		in := RoomSettings{
			Name:                    "movie night",
			PlaybackSpeed:           speed,
			DesyncTolerance:         decimal.NewFromFloat(1.5),
			MinorDesyncPlaybackSlow: decimal.NewFromFloat(0.05),
			MajorDesyncMin:          decimal.NewFromFloat(2.75),
		}

		raw, err := json.Marshal(in)
		require.NoError(t, err)

		var out RoomSettings
		require.NoError(t, json.Unmarshal(raw, &out))

		assert.Equal(t, in.Name, out.Name)
		assert.True(t, out.PlaybackSpeed.Equal(speed), "speed %s drifted to %s", speed, out.PlaybackSpeed)
		assert.True(t, out.DesyncTolerance.Equal(in.DesyncTolerance))
		assert.True(t, out.MinorDesyncPlaybackSlow.Equal(in.MinorDesyncPlaybackSlow))
		assert.True(t, out.MajorDesyncMin.Equal(in.MajorDesyncMin))
	}
}

func TestPlaylistEntryJSONRoundTrip(t *testing.T) {
	entries := []PlaylistEntry{
		NewVideoEntry("share1", "movies/a.mkv"),
		NewUrlEntry("https://example.com/stream.mp4"),
		NewSubtitlesEntry("share1", "movies/a.srt"),
	}

	for _, in := range entries {
		raw, err := json.Marshal(in)
		require.NoError(t, err)

		var out PlaylistEntry
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, in, out)
	}

	// the kind travels under the wire tag "type"
	raw, err := json.Marshal(NewUrlEntry("https://example.com/a"))
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "url", fields["type"])
	assert.NotContains(t, fields, "source", "file fields are omitted for url entries")
	assert.NotContains(t, fields, "path")
}
