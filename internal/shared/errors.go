package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Playback errors
	ErrPlayback     = fmt.Errorf("playback failed")
	ErrInvalidState = fmt.Errorf("invalid player state")

	// Lyrics and storage errors
	ErrLyricsNotFound = fmt.Errorf("lyrics not found")
	ErrTrackNotFound  = fmt.Errorf("track not found")
	ErrStorage        = fmt.Errorf("storage update failed")

	// Remote and challenge errors
	ErrNetwork          = fmt.Errorf("network request failed")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrSolverTimeout    = fmt.Errorf("challenge solver timed out")
	ErrInvalidChallenge = fmt.Errorf("invalid challenge")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
