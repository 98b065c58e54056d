package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/lyrics"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
	tu "github.com/desertthunder/libget/internal/testing"
)

type mockDownloader struct {
	mu    sync.Mutex
	errs  map[int64]error
	calls []int64
}

func (m *mockDownloader) Download(ctx context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, id)
	if err, ok := m.errs[id]; ok {
		return "", err
	}
	return lyrics.MsgSyncedDownloaded, nil
}

type failingLister struct{}

func (failingLister) ListNoLyricsIDs(ctx context.Context, skip bool) ([]int64, error) {
	return nil, shared.ErrStorage
}

func libraryStore() *tu.MemoryStore {
	synced := "[00:01.00] a"
	var tracks []models.Track
	for id := int64(1); id <= 5; id++ {
		tr := models.NewTrack(fmt.Sprintf("/m/%d.mp3", id), fmt.Sprintf("Track %d", id), "", "", 100)
		tr.ID = id
		tracks = append(tracks, tr)
	}
	tracks[3].SyncedLyrics = &synced
	tracks[4].Instrumental = true
	return tu.NewMemoryStore(tracks...)
}

func TestBulkDownloader(t *testing.T) {
	ctx := context.Background()
	opts := BulkDownloadOpts{SkipNotNeeded: true, NumWorkers: 3, RateLimit: 1000}

	t.Run("Collects per-track outcomes", func(t *testing.T) {
		downloader := &mockDownloader{errs: map[int64]error{
			2: fmt.Errorf("%w: x", shared.ErrLyricsNotFound),
			3: shared.ErrNetwork,
		}}
		prog := make(chan ProgressUpdate, 16)

		result, err := NewBulkDownloader(libraryStore(), downloader, nil).Run(ctx, prog, opts)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Total != 3 || result.Downloaded != 1 || result.NotFound != 1 || result.Failed != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
		if len(result.Results) != 3 {
			t.Errorf("expected 3 results, got %d", len(result.Results))
		}

		close(prog)
		var updates []ProgressUpdate
		for u := range prog {
			updates = append(updates, u)
		}
		if len(updates) != 4 {
			t.Fatalf("expected 4 updates, got %d", len(updates))
		}
		if updates[0].Phase != ListTracks || updates[0].Data != 3 {
			t.Errorf("unexpected first update: %+v", updates[0])
		}
		if updates[3].Phase != DownloadLyrics || updates[3].Step != 3 || updates[3].Total != 3 {
			t.Errorf("unexpected last update: %+v", updates[3])
		}
	})

	t.Run("Without skipping every track is queued", func(t *testing.T) {
		downloader := &mockDownloader{}
		result, err := NewBulkDownloader(libraryStore(), downloader, nil).Run(ctx, nil, BulkDownloadOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Total != 5 || len(downloader.calls) != 5 {
			t.Errorf("expected 5 downloads, got total=%d calls=%d", result.Total, len(downloader.calls))
		}
	})

	t.Run("Full progress channel does not block", func(t *testing.T) {
		prog := make(chan ProgressUpdate)
		result, err := NewBulkDownloader(libraryStore(), &mockDownloader{}, nil).Run(ctx, prog, opts)
		if err != nil || result.Downloaded != 3 {
			t.Errorf("unexpected result %+v, err %v", result, err)
		}
	})

	t.Run("List failure", func(t *testing.T) {
		_, err := NewBulkDownloader(failingLister{}, &mockDownloader{}, nil).Run(ctx, nil, opts)
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		downloader := &mockDownloader{}
		result, err := NewBulkDownloader(libraryStore(), downloader, nil).Run(cctx, nil, opts)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Downloaded != 0 {
			t.Errorf("expected no downloads, got %+v", result)
		}
	})

	t.Run("With the lyrics resolver", func(t *testing.T) {
		store := libraryStore()
		provider := &tu.StubProvider{Raw: &models.RawLyrics{PlainLyrics: func() *string { s := "words"; return &s }()}}
		emitter := &tu.RecordingEmitter{}
		resolver := lyrics.NewResolver(lyrics.ResolverOpts{Store: store, Provider: provider, Emitter: emitter})

		result, err := NewBulkDownloader(store, resolver, nil).Run(ctx, nil, BulkDownloadOpts{SkipNotNeeded: true, NumWorkers: 1, RateLimit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Downloaded != 3 {
			t.Errorf("expected 3 downloads, got %+v", result)
		}
		if n := len(emitter.Events(events.ReloadTrackID)); n != 3 {
			t.Errorf("expected 3 reloads, got %d", n)
		}
	})
}
