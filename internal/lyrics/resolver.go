package lyrics

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

// Store is the track storage the resolver persists through. Every update is a single atomic write.
type Store interface {
	GetTrackByID(ctx context.Context, id int64) (*models.Track, error)
	UpdateSyncedLyrics(ctx context.Context, id int64, synced, plain string) error
	UpdatePlainLyrics(ctx context.Context, id int64, plain string) error
	UpdateInstrumental(ctx context.Context, id int64) error
	UpdateNullLyrics(ctx context.Context, id int64) error
}

// Provider looks up lyrics for a track.
type Provider interface {
	GetLyrics(ctx context.Context, params models.LookupParams) (*models.RawLyrics, error)
}

// Result messages.
const (
	MsgSyncedDownloaded = "Synced lyrics downloaded"
	MsgPlainDownloaded  = "Plain lyrics downloaded"
	MsgInstrumental     = "Marked track as instrumental"
	MsgCleared          = "Lyrics cleared"
	MsgSaved            = "Lyrics saved successfully"
)

// ResolverOpts configures a [Resolver]. Store is required.
type ResolverOpts struct {
	Store    Store
	Provider Provider
	Emitter  events.Emitter
	Sidecar  *SidecarWriter // nil disables sidecar files
	Logger   *log.Logger
}

// Resolver is the lyrics resolution pipeline.
type Resolver struct {
	store    Store
	provider Provider
	emitter  events.Emitter
	sidecar  *SidecarWriter
	logger   *log.Logger
}

// NewResolver creates a resolver.
func NewResolver(opts ResolverOpts) *Resolver {
	if opts.Emitter == nil {
		opts.Emitter = events.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Resolver{
		store:    opts.Store,
		provider: opts.Provider,
		emitter:  opts.Emitter,
		sidecar:  opts.Sidecar,
		logger:   opts.Logger,
	}
}

// Download fetches lyrics for the track from the provider and applies them.
func (r *Resolver) Download(ctx context.Context, trackID int64) (string, error) {
	if r.provider == nil {
		return "", fmt.Errorf("%w: no lyrics provider configured", shared.ErrInvalidConfig)
	}

	track, err := r.store.GetTrackByID(ctx, trackID)
	if err != nil {
		return "", err
	}

	var outcome models.LyricsOutcome = models.NotFound{}
	raw, err := r.provider.GetLyrics(ctx, track.LookupParams())
	switch {
	case errors.Is(err, shared.ErrLyricsNotFound):
	case err != nil:
		return "", err
	default:
		outcome = FromRaw(*raw)
	}

	return r.Resolve(ctx, track, outcome, models.ProviderSource)
}

// Apply classifies a provider record chosen elsewhere (e.g. from search results) and applies it.
func (r *Resolver) Apply(ctx context.Context, trackID int64, raw models.RawLyrics) (string, error) {
	track, err := r.store.GetTrackByID(ctx, trackID)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, track, FromRaw(raw), models.ProviderSource)
}

// Save classifies user-edited text and applies it.
func (r *Resolver) Save(ctx context.Context, trackID int64, plain, synced string) (string, error) {
	track, err := r.store.GetTrackByID(ctx, trackID)
	if err != nil {
		return "", err
	}
	return r.Resolve(ctx, track, Classify(plain, synced), models.UserSource)
}

// Resolve persists outcome for track and notifies observers.
//
// NotFound returns [shared.ErrLyricsNotFound] without touching storage. A failed update
// reports the error and sends no notification.
func (r *Resolver) Resolve(ctx context.Context, track *models.Track, outcome models.LyricsOutcome, source models.LyricsSource) (string, error) {
	var (
		persist func() error
		message string
		reload  = true
	)

	switch o := outcome.(type) {
	case models.SyncedLyrics:
		persist = func() error { return r.store.UpdateSyncedLyrics(ctx, track.ID, o.Synced, o.Plain) }
		message = MsgSyncedDownloaded
	case models.UnsyncedLyrics:
		persist = func() error { return r.store.UpdatePlainLyrics(ctx, track.ID, o.Plain) }
		message = MsgPlainDownloaded
	case models.Instrumental:
		persist = func() error { return r.store.UpdateInstrumental(ctx, track.ID) }
		message = MsgInstrumental
		reload = source == models.UserSource
	case models.ClearLyrics:
		persist = func() error { return r.store.UpdateNullLyrics(ctx, track.ID) }
		message = MsgCleared
	case models.NotFound:
		r.logger.Info("no lyrics found", "track", track.ID, "title", track.Title, "artist", track.ArtistName)
		return "", fmt.Errorf("%w: %s - %s", shared.ErrLyricsNotFound, track.ArtistName, track.Title)
	default:
		panic(fmt.Sprintf("lyrics: unhandled outcome %T", outcome))
	}

	if source == models.UserSource {
		message = MsgSaved
	}

	undo := func() error { return nil }
	if r.sidecar != nil {
		var err error
		if undo, err = r.sidecar.Write(track.FilePath, outcome); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
	}

	if err := persist(); err != nil {
		if uerr := undo(); uerr != nil {
			r.logger.Warn("failed to restore sidecar files", "track", track.ID, "error", uerr)
		}
		r.logger.Error("lyrics update failed", "track", track.ID, "outcome", outcome, "error", err)
		if !errors.Is(err, shared.ErrStorage) {
			err = fmt.Errorf("%w: %w", shared.ErrStorage, err)
		}
		return "", err
	}

	r.logger.Info("lyrics updated", "track", track.ID, "outcome", outcome, "source", source)
	if reload {
		r.emitter.Emit(events.ReloadTrackID, track.ID)
	}
	return message, nil
}
