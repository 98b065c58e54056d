package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

// PublishClient is the remote side of publishing (services.LRCLibService).
type PublishClient interface {
	RequestChallenge(ctx context.Context) (*models.Challenge, error)
	Publish(ctx context.Context, req models.PublishRequest, token models.PublishToken) error
}

// ChallengeSolver finds a nonce for a challenge (challenge.Solver).
type ChallengeSolver interface {
	Solve(ctx context.Context, c models.Challenge) (uint64, error)
}

// PublishPipeline runs request → solve → publish with per-phase progress.
type PublishPipeline struct {
	client  PublishClient
	solver  ChallengeSolver
	emitter events.Emitter
	logger  *log.Logger
}

// NewPublishPipeline creates a pipeline. A nil emitter discards progress.
func NewPublishPipeline(client PublishClient, solver ChallengeSolver, emitter events.Emitter, logger *log.Logger) *PublishPipeline {
	if emitter == nil {
		emitter = events.Discard
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PublishPipeline{client: client, solver: solver, emitter: emitter, logger: logger}
}

// Run publishes req and returns the final progress record.
//
// The returned progress reflects exactly what was last emitted, including on failure.
func (p *PublishPipeline) Run(ctx context.Context, req models.PublishRequest) (models.PublishProgress, error) {
	progress := models.NewPublishProgress(shared.GenerateID())
	logger := p.logger.With("attempt", progress.AttemptID, "title", req.Title)

	set := func(phase *models.PhaseStatus, status models.PhaseStatus) {
		*phase = status
		p.emitter.Emit(events.PublishLyricsProgress, progress)
	}

	set(&progress.RequestChallenge, models.PhaseInProgress)
	challenge, err := p.client.RequestChallenge(ctx)
	if err != nil {
		set(&progress.RequestChallenge, models.PhaseFailed)
		logger.Error("challenge request failed", "error", err)
		return progress, fmt.Errorf("request challenge: %w", err)
	}
	set(&progress.RequestChallenge, models.PhaseDone)

	set(&progress.SolveChallenge, models.PhaseInProgress)
	nonce, err := p.solver.Solve(ctx, *challenge)
	if err != nil {
		set(&progress.SolveChallenge, models.PhaseFailed)
		logger.Error("challenge solve failed", "error", err)
		return progress, fmt.Errorf("solve challenge: %w", err)
	}
	set(&progress.SolveChallenge, models.PhaseDone)
	logger.Debug("challenge solved", "prefix", challenge.Prefix, "nonce", nonce)

	token := models.NewPublishToken(challenge.Prefix, nonce)

	set(&progress.PublishLyrics, models.PhaseInProgress)
	if err := p.client.Publish(ctx, req, token); err != nil {
		set(&progress.PublishLyrics, models.PhaseFailed)
		logger.Error("publish failed", "error", err)
		return progress, fmt.Errorf("publish lyrics: %w", err)
	}
	set(&progress.PublishLyrics, models.PhaseDone)

	logger.Info("lyrics published")
	return progress, nil
}

// NewPublishRequest builds a publish request from a stored track.
// Tracks with no lyrics and no instrumental flag cannot be published.
func NewPublishRequest(track models.Track) (models.PublishRequest, error) {
	req := models.PublishRequest{
		Title:      track.Title,
		AlbumName:  track.AlbumName,
		ArtistName: track.ArtistName,
		Duration:   track.Duration,
	}

	if track.Instrumental {
		return req, nil
	}
	if !track.HasSyncedLyrics() && !track.HasPlainLyrics() {
		return req, fmt.Errorf("%w: track %d has no lyrics to publish", shared.ErrInvalidInput, track.ID)
	}
	if track.SyncedLyrics != nil {
		req.SyncedLyrics = *track.SyncedLyrics
	}
	if track.PlainLyrics != nil {
		req.PlainLyrics = *track.PlainLyrics
	}
	return req, nil
}
