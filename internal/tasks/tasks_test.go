package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/libget/internal/challenge"
	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
	tu "github.com/desertthunder/libget/internal/testing"
)

type mockClient struct {
	challenge    *models.Challenge
	challengeErr error
	publishErr   error

	challengeCalls int
	publishCalls   int
	token          models.PublishToken
	request        models.PublishRequest
}

func (m *mockClient) RequestChallenge(ctx context.Context) (*models.Challenge, error) {
	m.challengeCalls++
	if m.challengeErr != nil {
		return nil, m.challengeErr
	}
	return m.challenge, nil
}

func (m *mockClient) Publish(ctx context.Context, req models.PublishRequest, token models.PublishToken) error {
	m.publishCalls++
	m.request = req
	m.token = token
	return m.publishErr
}

type mockSolver struct {
	nonce uint64
	err   error
	calls int
}

func (m *mockSolver) Solve(ctx context.Context, c models.Challenge) (uint64, error) {
	m.calls++
	return m.nonce, m.err
}

func progressEvents(t *testing.T, emitter *tu.RecordingEmitter) []models.PublishProgress {
	t.Helper()
	var out []models.PublishProgress
	for _, ev := range emitter.Events(events.PublishLyricsProgress) {
		out = append(out, ev.Payload.(models.PublishProgress))
	}
	return out
}

type phases [3]models.PhaseStatus

func phasesOf(p models.PublishProgress) phases {
	return phases{p.RequestChallenge, p.SolveChallenge, p.PublishLyrics}
}

var (
	pending    = models.PhasePending
	inProgress = models.PhaseInProgress
	done       = models.PhaseDone
	failed     = models.PhaseFailed
)

func TestPublishPipeline(t *testing.T) {
	ctx := context.Background()
	req := models.PublishRequest{Title: "Song", ArtistName: "Artist", AlbumName: "Album", Duration: 200, PlainLyrics: "a", SyncedLyrics: "[00:01.00] a"}

	t.Run("Success emits every transition in order", func(t *testing.T) {
		client := &mockClient{challenge: &models.Challenge{Prefix: "abc", Target: "ff"}}
		solver := &mockSolver{nonce: 0}
		emitter := &tu.RecordingEmitter{}

		progress, err := NewPublishPipeline(client, solver, emitter, nil).Run(ctx, req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !progress.Done() {
			t.Errorf("expected all phases done, got %+v", progress)
		}
		if client.token != "abc:0" {
			t.Errorf("expected token abc:0, got %s", client.token)
		}
		if client.request != req {
			t.Errorf("expected request to be forwarded, got %+v", client.request)
		}

		want := []phases{
			{inProgress, pending, pending},
			{done, pending, pending},
			{done, inProgress, pending},
			{done, done, pending},
			{done, done, inProgress},
			{done, done, done},
		}
		got := progressEvents(t, emitter)
		if len(got) != len(want) {
			t.Fatalf("expected %d snapshots, got %d", len(want), len(got))
		}
		for i := range want {
			if phasesOf(got[i]) != want[i] {
				t.Errorf("snapshot %d: expected %v, got %v", i, want[i], phasesOf(got[i]))
			}
			if got[i].AttemptID != progress.AttemptID {
				t.Errorf("snapshot %d has attempt %s, want %s", i, got[i].AttemptID, progress.AttemptID)
			}
		}
	})

	t.Run("Challenge failure stops before solving", func(t *testing.T) {
		client := &mockClient{challengeErr: shared.ErrTimeout}
		solver := &mockSolver{}
		emitter := &tu.RecordingEmitter{}

		progress, err := NewPublishPipeline(client, solver, emitter, nil).Run(ctx, req)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if solver.calls != 0 || client.publishCalls != 0 {
			t.Errorf("solver and publish must not run: solver=%d publish=%d", solver.calls, client.publishCalls)
		}
		if phasesOf(progress) != (phases{failed, pending, pending}) {
			t.Errorf("unexpected final progress: %v", phasesOf(progress))
		}

		got := progressEvents(t, emitter)
		if len(got) != 2 || phasesOf(got[1]) != (phases{failed, pending, pending}) {
			t.Errorf("unexpected snapshots: %v", got)
		}
	})

	t.Run("Solver failure", func(t *testing.T) {
		client := &mockClient{challenge: &models.Challenge{Prefix: "abc", Target: "00"}}
		solver := &mockSolver{err: shared.ErrSolverTimeout}
		emitter := &tu.RecordingEmitter{}

		progress, err := NewPublishPipeline(client, solver, emitter, nil).Run(ctx, req)
		if !errors.Is(err, shared.ErrSolverTimeout) {
			t.Errorf("expected ErrSolverTimeout, got %v", err)
		}
		if client.publishCalls != 0 {
			t.Error("publish must not run after a failed solve")
		}
		if phasesOf(progress) != (phases{done, failed, pending}) {
			t.Errorf("unexpected final progress: %v", phasesOf(progress))
		}
		if n := len(progressEvents(t, emitter)); n != 4 {
			t.Errorf("expected 4 snapshots, got %d", n)
		}
	})

	t.Run("Publish failure keeps earlier phases done", func(t *testing.T) {
		client := &mockClient{challenge: &models.Challenge{Prefix: "abc", Target: "ff"}, publishErr: shared.ErrNetwork}
		emitter := &tu.RecordingEmitter{}

		progress, err := NewPublishPipeline(client, &mockSolver{nonce: 17}, emitter, nil).Run(ctx, req)
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
		if phasesOf(progress) != (phases{done, done, failed}) {
			t.Errorf("unexpected final progress: %v", phasesOf(progress))
		}
		if client.token != "abc:17" {
			t.Errorf("expected token abc:17, got %s", client.token)
		}

		got := progressEvents(t, emitter)
		if len(got) != 6 || phasesOf(got[5]) != (phases{done, done, failed}) {
			t.Errorf("unexpected snapshots: %v", got)
		}
		if !got[5].Failed() {
			t.Error("expected final snapshot to report failure")
		}
	})

	t.Run("Attempts get distinct ids", func(t *testing.T) {
		client := &mockClient{challenge: &models.Challenge{Prefix: "abc", Target: "ff"}}
		p := NewPublishPipeline(client, &mockSolver{}, nil, nil)

		a, _ := p.Run(ctx, req)
		b, _ := p.Run(ctx, req)
		if a.AttemptID == "" || a.AttemptID == b.AttemptID {
			t.Errorf("expected distinct attempt ids, got %q and %q", a.AttemptID, b.AttemptID)
		}
	})

	t.Run("Easy challenge with the real solver", func(t *testing.T) {
		client := &mockClient{challenge: &models.Challenge{Prefix: "abc", Target: strings.Repeat("ff", 32)}}
		solver := challenge.NewSolver(challenge.SolverOpts{Workers: 2})

		if _, err := NewPublishPipeline(client, solver, nil, nil).Run(ctx, req); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if client.token != "abc:0" {
			t.Errorf("expected token abc:0, got %s", client.token)
		}
	})
}

func TestNewPublishRequest(t *testing.T) {
	lyrics := "[00:01.00] a"
	plain := "a"

	t.Run("With lyrics", func(t *testing.T) {
		track := models.NewTrack("/m/a.mp3", "A", "Album", "Artist", 120)
		track.SyncedLyrics, track.PlainLyrics = &lyrics, &plain

		req, err := NewPublishRequest(track)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.Title != "A" || req.SyncedLyrics != lyrics || req.PlainLyrics != plain || req.Duration != 120 {
			t.Errorf("unexpected request: %+v", req)
		}
	})

	t.Run("Instrumental publishes empty lyrics", func(t *testing.T) {
		track := models.NewTrack("/m/a.mp3", "A", "Album", "Artist", 120)
		track.Instrumental = true

		req, err := NewPublishRequest(track)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if req.SyncedLyrics != "" || req.PlainLyrics != "" {
			t.Errorf("expected empty lyrics, got %+v", req)
		}
	})

	t.Run("Without lyrics", func(t *testing.T) {
		_, err := NewPublishRequest(models.NewTrack("/m/a.mp3", "A", "", "", 120))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
