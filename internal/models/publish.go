package models

import (
	"encoding/json"
	"strconv"
)

// Challenge is a proof-of-work puzzle issued by the lyrics database.
//
// Target is a hex-encoded big-endian upper bound for SHA-256(prefix ‖ nonce).
type Challenge struct {
	Prefix string `json:"prefix"`
	Target string `json:"target"`
}

// PublishToken authorizes a single publish request.
type PublishToken string

// NewPublishToken formats prefix and nonce as "<prefix>:<nonce>".
func NewPublishToken(prefix string, nonce uint64) PublishToken {
	return PublishToken(prefix + ":" + strconv.FormatUint(nonce, 10))
}

// PublishRequest is the metadata and lyrics submitted to the lyrics database.
type PublishRequest struct {
	Title        string  `json:"trackName"`
	AlbumName    string  `json:"albumName"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// PhaseStatus is the state of one publish phase.
type PhaseStatus int

const (
	PhasePending PhaseStatus = iota
	PhaseInProgress
	PhaseDone
	PhaseFailed
)

func (s PhaseStatus) String() string {
	switch s {
	case PhasePending:
		return "Pending"
	case PhaseInProgress:
		return "In Progress"
	case PhaseDone:
		return "Done"
	case PhaseFailed:
		return "Failed"
	default:
		return ""
	}
}

// MarshalJSON renders the status label observers display.
func (s PhaseStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// PublishProgress is the three-phase status of one publish attempt.
//
// It is a value type; every emitted snapshot is an independent copy.
type PublishProgress struct {
	AttemptID        string      `json:"attemptId"`
	RequestChallenge PhaseStatus `json:"requestChallenge"`
	SolveChallenge   PhaseStatus `json:"solveChallenge"`
	PublishLyrics    PhaseStatus `json:"publishLyrics"`
}

// NewPublishProgress returns a progress record with every phase Pending.
func NewPublishProgress(attemptID string) PublishProgress {
	return PublishProgress{AttemptID: attemptID}
}

// Done reports whether every phase completed.
func (p PublishProgress) Done() bool {
	return p.RequestChallenge == PhaseDone && p.SolveChallenge == PhaseDone && p.PublishLyrics == PhaseDone
}

// Failed reports whether any phase failed.
func (p PublishProgress) Failed() bool {
	return p.RequestChallenge == PhaseFailed || p.SolveChallenge == PhaseFailed || p.PublishLyrics == PhaseFailed
}
