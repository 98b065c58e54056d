package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/lyrics"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
	"github.com/desertthunder/libget/internal/tasks"
)

// LyricsDownload downloads lyrics for one track.
func (r *Runner) LyricsDownload(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	msg, err := r.resolver.Download(ctx, id)
	if errors.Is(err, shared.ErrLyricsNotFound) {
		return r.writePlain("- No lyrics found for track %d\n", id)
	}
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", msg)
}

// LyricsDownloadAll downloads lyrics for every track lacking them. Interrupting stops
// dispatching new tracks and prints the partial summary.
func (r *Runner) LyricsDownloadAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	downloader := tasks.NewBulkDownloader(r.tracks, r.resolver, shared.WithLogger(r.logger, "component", "bulk"))
	result, err := downloader.Run(ctx, progress, tasks.BulkDownloadOpts{
		SkipNotNeeded: r.config.Library.SkipNotNeededTracks && !cmd.Bool("all"),
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     r.config.LRCLib.RequestsPerSecond,
	})
	close(progress)
	<-done

	if result == nil {
		return err
	}

	r.writePlainHeader("Download summary")
	r.writePlain("Tracks:     %d\n", result.Total)
	r.writePlain("Downloaded: %d\n", result.Downloaded)
	r.writePlain("Not found:  %d\n", result.NotFound)
	r.writePlain("Failed:     %d\n", result.Failed)

	if errors.Is(err, context.Canceled) {
		return r.writePlainln("Interrupted after %d of %d tracks", len(result.Results), result.Total)
	}
	return err
}

// LyricsRetrieve prints the LRCLIB record for a recording.
func (r *Runner) LyricsRetrieve(ctx context.Context, cmd *cli.Command) error {
	raw, err := r.lrclib().GetLyrics(ctx, lookupParams(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(raw, cmd.Bool("pretty"))
	}
	r.writeRecord(*raw)
	return nil
}

// LyricsSearch prints LRCLIB search results.
func (r *Runner) LyricsSearch(ctx context.Context, cmd *cli.Command) error {
	results, err := r.lrclib().SearchLyrics(ctx, lookupParams(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results) == 0 {
		return r.writePlain("No results.\n")
	}

	r.writePlainHeader(fmt.Sprintf("%d results", len(results)))
	for _, raw := range results {
		r.writePlain("%8d  %-6s %s • %s", raw.ID, shared.FormatDuration(raw.Duration), raw.TrackName, raw.ArtistName)
		if raw.AlbumName != "" {
			r.writePlain(" • %s", raw.AlbumName)
		}
		r.writePlain("  [%s]\n", recordKind(raw))
	}
	return nil
}

// LyricsApply applies an LRCLIB record read from --file (or stdin) to a track.
func (r *Runner) LyricsApply(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd)
	if err != nil {
		return err
	}

	data, err := r.readInput(cmd.String("file"))
	if err != nil {
		return err
	}

	var raw models.RawLyrics
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: lyrics record: %v", shared.ErrInvalidInput, err)
	}

	if err := r.open(); err != nil {
		return err
	}

	msg, err := r.resolver.Apply(ctx, id, raw)
	if errors.Is(err, shared.ErrLyricsNotFound) {
		return r.writePlain("- Record has no lyrics, track %d left unchanged\n", id)
	}
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", msg)
}

// LyricsSave stores lyrics read from --plain and --synced. Giving neither clears the track.
func (r *Runner) LyricsSave(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd)
	if err != nil {
		return err
	}

	var plain, synced string
	if path := cmd.String("plain"); path != "" {
		data, err := r.readInput(path)
		if err != nil {
			return err
		}
		plain = string(data)
	}
	if path := cmd.String("synced"); path != "" {
		data, err := r.readInput(path)
		if err != nil {
			return err
		}
		synced = string(data)
	}

	if err := r.open(); err != nil {
		return err
	}

	msg, err := r.resolver.Save(ctx, id, plain, synced)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %s\n", msg)
}

// LyricsPublish publishes a track's stored lyrics, printing each progress snapshot.
func (r *Runner) LyricsPublish(ctx context.Context, cmd *cli.Command) error {
	id, err := trackID(cmd)
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	track, err := r.tracks.GetTrackByID(ctx, id)
	if err != nil {
		return err
	}
	req, err := tasks.NewPublishRequest(*track)
	if err != nil {
		return err
	}

	useJSON := cmd.Bool("json")
	emitter := events.EmitterFunc(func(name string, payload any) {
		if p, ok := payload.(models.PublishProgress); ok && !useJSON {
			r.writePlain("challenge: %-11s solve: %-11s publish: %s\n", p.RequestChallenge, p.SolveChallenge, p.PublishLyrics)
		}
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	progress, err := r.publisher(emitter).Run(ctx, req)
	if useJSON {
		if werr := r.writeJSON(progress, false); werr != nil {
			return werr
		}
	}
	if err != nil {
		return err
	}
	if !useJSON {
		r.writePlain("✓ Published lyrics for %s\n", track.Title)
	}
	return nil
}

func (r *Runner) readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return data, nil
}

func (r *Runner) writeRecord(raw models.RawLyrics) {
	r.writePlainHeader(fmt.Sprintf("%s • %s", raw.TrackName, raw.ArtistName))
	r.writePlain("LRCLIB ID: %d\n", raw.ID)
	r.writePlain("Album:     %s\n", raw.AlbumName)
	r.writePlain("Duration:  %s\n", shared.FormatDuration(raw.Duration))
	r.writePlain("Kind:      %s\n", recordKind(raw))

	switch {
	case raw.SyncedLyrics != nil && *raw.SyncedLyrics != "":
		r.writePlainln("%s", strings.TrimSpace(*raw.SyncedLyrics))
	case raw.PlainLyrics != nil && *raw.PlainLyrics != "":
		r.writePlainln("%s", strings.TrimSpace(*raw.PlainLyrics))
	}
}

func lookupParams(cmd *cli.Command) models.LookupParams {
	return models.LookupParams{
		Title:      cmd.String("title"),
		ArtistName: cmd.String("artist"),
		AlbumName:  cmd.String("album"),
		Duration:   cmd.Float("duration"),
	}
}

func recordKind(raw models.RawLyrics) string {
	outcome := lyrics.FromRaw(raw)
	if _, ok := outcome.(models.NotFound); ok {
		return "empty"
	}
	return fmt.Sprint(outcome)
}
