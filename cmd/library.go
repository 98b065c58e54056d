package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/libget/internal/formatter"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/player/speaker"
	"github.com/desertthunder/libget/internal/shared"
)

// LibraryAdd registers an audio file. The title defaults to the file name and the duration is
// read from the file when not given.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	title := cmd.String("title")
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}

	duration := cmd.Float("duration")
	if duration <= 0 {
		if duration, err = speaker.ReadDuration(abs); err != nil {
			return fmt.Errorf("failed to read duration, pass --duration: %w", err)
		}
		r.logger.Debug("read duration", "path", abs, "seconds", duration)
	}

	if err := r.open(); err != nil {
		return err
	}

	track := models.NewTrack(abs, title, cmd.String("album"), cmd.String("artist"), duration)
	if err := r.tracks.Create(ctx, &track); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}

	r.logger.Info("track added", "id", track.ID, "title", track.Title)
	return r.writePlain("✓ Added track %d: %s (%s)\n", track.ID, track.Title, shared.FormatDuration(track.Duration))
}

// LibraryList prints every track.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	tracks, err := r.tracks.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks. Add one with 'libget library add <path>'.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Library (%d tracks)", len(tracks)))
	for _, t := range tracks {
		r.writePlain("%4d  %-6s %s", t.ID, shared.FormatDuration(t.Duration), t.Title)
		if t.ArtistName != "" {
			r.writePlain(" • %s", t.ArtistName)
		}
		r.writePlain("  [%s]\n", formatter.LyricsState(t))
	}
	return nil
}

// LibraryShow prints one track and its lyrics.
func (r *Runner) LibraryShow(ctx context.Context, cmd *cli.Command) error {
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

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlainHeader(track.Title)
	r.writePlain("ID:       %d\n", track.ID)
	r.writePlain("Artist:   %s\n", track.ArtistName)
	r.writePlain("Album:    %s\n", track.AlbumName)
	r.writePlain("Duration: %s\n", shared.FormatDuration(track.Duration))
	r.writePlain("File:     %s\n", track.FilePath)
	r.writePlain("Lyrics:   %s\n", formatter.LyricsState(*track))

	switch {
	case track.HasSyncedLyrics():
		r.writePlainln("%s", *track.SyncedLyrics)
	case track.HasPlainLyrics():
		r.writePlainln("%s", *track.PlainLyrics)
	}
	return nil
}

// LibraryMissing prints the ids of tracks that still need lyrics, one per line.
func (r *Runner) LibraryMissing(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	skip := r.config.Library.SkipNotNeededTracks && !cmd.Bool("all")
	ids, err := r.tracks.ListNoLyricsIDs(ctx, skip)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.writePlain("%d\n", id)
	}
	return nil
}

// LibraryExport writes a library report. Without --output the report goes to stdout.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	var format formatter.Format
	if f := cmd.String("format"); f != "" {
		parsed, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}
		format = parsed
	}

	tracks, err := r.tracks.List(ctx)
	if err != nil {
		return err
	}
	title := cmd.String("title")

	path := cmd.String("output")
	if path == "" {
		if format == "" {
			format = formatter.Text
		}
		data, err := formatter.Export(format, title, tracks)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	written, err := formatter.WriteExport(path, format, title, tracks)
	if err != nil {
		return err
	}
	r.logger.Debug("exported library", "path", path, "format", written, "tracks", len(tracks))
	r.writePlain("✓ Exported %d tracks to %s (%s)\n", len(tracks), path, written)
	return nil
}
