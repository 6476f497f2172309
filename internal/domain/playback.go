package domain

import "time"

// PlaybackState is the single authoritative playback record of a room.
// CurrentTime and IsPlaying describe the state at UpdatedAt (unix ms);
// readers must extrapolate forward while IsPlaying is true. Updates are
// full replaces, last writer wins.
type PlaybackState struct {
	IsPlaying   bool    `json:"is_playing" redis:"is_playing"`
	CurrentTime float64 `json:"current_time" redis:"current_time"`
	UpdatedAt   int64   `json:"updated_at" redis:"updated_at"`
	UpdatedBy   string  `json:"updated_by" redis:"updated_by"`
}

// ExpectedPosition extrapolates the playback position to now.
func (p PlaybackState) ExpectedPosition(now time.Time) float64 {
	if !p.IsPlaying {
		return p.CurrentTime
	}

	elapsed := float64(now.UnixMilli()-p.UpdatedAt) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	return p.CurrentTime + elapsed
}
