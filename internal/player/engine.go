package player

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

// Engine is the player state machine.
type Engine struct {
	mu       sync.Mutex
	device   Device
	status   models.PlayerStatus
	track    *models.Track
	position float64
	duration float64
	logger   *log.Logger
}

// NewEngine creates a stopped engine driving device.
func NewEngine(device Device, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{device: device, logger: logger}
}

// Play loads track and starts it from the beginning, replacing whatever was playing.
func (e *Engine) Play(track models.Track) error {
	src, err := e.device.Open(track)
	if err != nil {
		return playbackError("open "+track.FilePath, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.device.Play(src); err != nil {
		src.Close()
		return playbackError("play "+track.FilePath, err)
	}

	e.status = models.Playing
	e.track = &track
	e.position = 0
	e.duration = track.Duration
	if d := e.device.Duration(); d > 0 {
		e.duration = d
	}

	e.logger.Info("playing", "track", track.ID, "title", track.Title, "duration", shared.FormatDuration(e.duration))
	return nil
}

// Pause suspends output. Only valid while playing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != models.Playing {
		return e.invalid("pause")
	}
	if err := e.device.Pause(); err != nil {
		return playbackError("pause", err)
	}

	e.advance(e.device.Position())
	e.status = models.Paused
	e.logger.Debug("paused", "position", e.position)
	return nil
}

// Resume continues output from the paused position. Only valid while paused.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != models.Paused {
		return e.invalid("resume")
	}
	if err := e.device.Resume(); err != nil {
		return playbackError("resume", err)
	}

	e.status = models.Playing
	e.logger.Debug("resumed", "position", e.position)
	return nil
}

// Seek moves playback to position, clamped to the track. Valid while playing or paused.
func (e *Engine) Seek(position float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == models.Stopped {
		return e.invalid("seek")
	}

	target := e.clamp(position)
	if err := e.device.Seek(target); err != nil {
		return playbackError("seek", err)
	}

	e.position = target
	e.logger.Debug("seeked", "requested", position, "position", target)
	return nil
}

// SeekBy moves playback by delta seconds relative to the current position.
func (e *Engine) SeekBy(delta float64) error {
	e.mu.Lock()
	position := e.position + delta
	e.mu.Unlock()

	return e.Seek(position)
}

// Stop halts output and clears the track. Valid from any state.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.device.Stop(); err != nil {
		return playbackError("stop", err)
	}

	e.status = models.Stopped
	e.track = nil
	e.position = 0
	e.duration = 0
	e.logger.Debug("stopped")
	return nil
}

// TogglePause pauses when playing and resumes when paused.
func (e *Engine) TogglePause() error {
	e.mu.Lock()
	status := e.status
	e.mu.Unlock()

	if status == models.Paused {
		return e.Resume()
	}
	return e.Pause()
}

// Snapshot returns a copy of the current state without refreshing it from the device.
func (e *Engine) Snapshot() models.PlayerSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// renewState refreshes position and duration from the device. Caller holds e.mu.
func (e *Engine) renewState() {
	if e.status != models.Playing {
		return
	}
	if d := e.device.Duration(); d > 0 {
		e.duration = d
	}
	e.advance(e.device.Position())
}

// advance moves the position forward to pos, never backwards. Caller holds e.mu.
func (e *Engine) advance(pos float64) {
	e.position = e.clamp(max(e.position, pos))
}

func (e *Engine) clamp(pos float64) float64 {
	if pos != pos || pos < 0 {
		return 0
	}
	return min(pos, e.duration)
}

// snapshot copies the state. Caller holds e.mu.
func (e *Engine) snapshot() models.PlayerSnapshot {
	s := models.PlayerSnapshot{
		Status:   e.status,
		Position: e.position,
		Duration: e.duration,
	}
	if e.track != nil {
		id := e.track.ID
		s.TrackID = &id
		s.Title = e.track.Title
	}
	return s
}

func (e *Engine) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", shared.ErrInvalidState, op, e.status)
}

func playbackError(op string, err error) error {
	if errors.Is(err, shared.ErrPlayback) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", shared.ErrPlayback, op, err)
}
