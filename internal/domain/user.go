package domain

import "time"

type ReadyState int

// Wire values are stable: Ready=0, NotReady=1, Loading=2. Loading is
// server-assigned on active-entry changes and never accepted from clients.
const (
	Ready ReadyState = iota
	NotReady
	Loading
)

func (r ReadyState) Valid() bool {
	return r >= Ready && r <= Loading
}

type Profile struct {
	Id          UserId  `json:"id"`
	Username    string  `json:"username"`
	Displayname string  `json:"displayname"`
	AvatarUrl   *string `json:"avatar,omitempty"`
	Verified    bool    `json:"verified"`
}

// TimestampSample is the last media time a user reported, stamped with the
// monotonic instant it arrived at.
type TimestampSample struct {
	Value     float64
	ArrivedAt time.Time
}
