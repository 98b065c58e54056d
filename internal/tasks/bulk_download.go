package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/libget/internal/shared"
)

// TrackLister lists the tracks still needing lyrics.
type TrackLister interface {
	ListNoLyricsIDs(ctx context.Context, skipNotNeeded bool) ([]int64, error)
}

// LyricsDownloader downloads and stores lyrics for one track (lyrics.Resolver).
type LyricsDownloader interface {
	Download(ctx context.Context, trackID int64) (string, error)
}

// BulkDownloadOpts contains configuration for bulk lyrics downloads.
type BulkDownloadOpts struct {
	SkipNotNeeded bool    // Skip tracks that already have synced lyrics or are instrumental
	NumWorkers    int     // Concurrent workers (default: 2)
	RateLimit     float64 // Requests per second (default: 2)
}

// TrackDownloadResult is the outcome for one track.
type TrackDownloadResult struct {
	TrackID int64
	Message string
	Error   error
}

// BulkDownloadResult summarizes a bulk download.
type BulkDownloadResult struct {
	Total      int
	Downloaded int
	NotFound   int
	Failed     int
	Results    []TrackDownloadResult
}

// BulkDownloader downloads lyrics for every track lacking them.
type BulkDownloader struct {
	tracks TrackLister
	lyrics LyricsDownloader
	logger *log.Logger
}

// NewBulkDownloader creates a downloader.
func NewBulkDownloader(tracks TrackLister, lyrics LyricsDownloader, logger *log.Logger) *BulkDownloader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &BulkDownloader{tracks: tracks, lyrics: lyrics, logger: logger}
}

// Run downloads lyrics concurrently behind a shared rate limiter.
//
// Cancelling ctx stops dispatching new tracks; the partial result is returned with ctx's error.
func (d *BulkDownloader) Run(ctx context.Context, prog chan<- ProgressUpdate, opts BulkDownloadOpts) (*BulkDownloadResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	ids, err := d.tracks.ListNoLyricsIDs(ctx, opts.SkipNotNeeded)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	result := &BulkDownloadResult{Total: len(ids), Results: make([]TrackDownloadResult, 0, len(ids))}
	sendProgress(prog, listTracksUpdate(len(ids)))
	d.logger.Info("bulk download started", "tracks", len(ids), "workers", opts.NumWorkers, "rate", opts.RateLimit)

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan int64)
	results := make(chan TrackDownloadResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go d.worker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case <-ctx.Done():
				return
			case jobs <- id:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		result.Results = append(result.Results, res)
		switch {
		case res.Error == nil:
			result.Downloaded++
		case errors.Is(res.Error, shared.ErrLyricsNotFound):
			result.NotFound++
		default:
			result.Failed++
		}
		sendProgress(prog, downloadResultUpdate(len(result.Results), len(ids), res))
	}

	d.logger.Info("bulk download finished",
		"downloaded", result.Downloaded, "not_found", result.NotFound, "failed", result.Failed)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// worker is a worker goroutine that downloads lyrics for track ids from the jobs channel.
func (d *BulkDownloader) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan int64,
	results chan<- TrackDownloadResult,
) {
	defer wg.Done()

	for id := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- TrackDownloadResult{TrackID: id, Error: err}
			continue
		}

		msg, err := d.lyrics.Download(ctx, id)
		if err != nil && !errors.Is(err, shared.ErrLyricsNotFound) {
			d.logger.Warn("lyrics download failed", "track", id, "error", err)
		}
		results <- TrackDownloadResult{TrackID: id, Message: msg, Error: err}
	}
}
