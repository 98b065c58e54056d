package models

import "encoding/json"

// PlayerStatus is the playback state of the player engine.
type PlayerStatus int

const (
	Stopped PlayerStatus = iota
	Playing
	Paused
)

func (s PlayerStatus) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return ""
	}
}

// MarshalJSON renders the status as its lowercase name.
func (s PlayerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// PlayerSnapshot is an immutable copy of the engine state taken on a broadcast tick.
type PlayerSnapshot struct {
	Status   PlayerStatus `json:"status"`
	TrackID  *int64       `json:"trackId"`
	Title    string       `json:"title,omitempty"`
	Position float64      `json:"position"`
	Duration float64      `json:"duration"`
}

// HasTrack reports whether a track is loaded.
func (s PlayerSnapshot) HasTrack() bool {
	return s.TrackID != nil
}

// Progress returns position/duration in [0, 1].
func (s PlayerSnapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(max(s.Position/s.Duration, 0), 1)
}
