package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PlayingState int

const (
	Paused PlayingState = iota
	Playing
)

// RoomSettings are the user-visible knobs of a room. Speeds and thresholds
// are fixed-point decimals so they round-trip through JSON without float
// drift; the desync controller converts to float64 only inside its own
// arithmetic.
type RoomSettings struct {
	Name                    string          `json:"name"`
	PlaybackSpeed           decimal.Decimal `json:"playback_speed"`
	DesyncTolerance         decimal.Decimal `json:"desync_tolerance"`
	MinorDesyncPlaybackSlow decimal.Decimal `json:"minor_desync_playback_slow"`
	MajorDesyncMin          decimal.Decimal `json:"major_desync_min"`
}

var (
	MinPlaybackSpeed = decimal.NewFromFloat(0.25)
	MaxPlaybackSpeed = decimal.NewFromFloat(4.00)
)

// Anchor is the (server instant, media timestamp) pair of the last playback
// transition. While playing, the expected timestamp at instant t is
// Timestamp + (t - Instant) * speed; while paused it is Timestamp.
type Anchor struct {
	Instant   time.Time
	Timestamp float64
}

func (a Anchor) Project(now time.Time, speed decimal.Decimal, state PlayingState) float64 {
	if state != Playing {
		return a.Timestamp
	}

	return a.Timestamp + now.Sub(a.Instant).Seconds()*speed.InexactFloat64()
}
