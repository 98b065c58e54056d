package lyrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
	tu "github.com/desertthunder/libget/internal/testing"
)

func strPtr(s string) *string { return &s }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		plain  string
		synced string
		want   models.LyricsOutcome
	}{
		{"Marker with space", "some words", "[au: instrumental]", models.Instrumental{}},
		{"Marker without space", "", "[au:instrumental]", models.Instrumental{}},
		{"Marker any case", "", "[AU:  Instrumental]", models.Instrumental{}},
		{"Marker among other lines", "", "[ar: Someone]\n[au: instrumental]", models.Instrumental{}},
		{"Synced", "hello", "[00:01.00] hello", models.SyncedLyrics{Synced: "[00:01.00] hello", Plain: "hello"}},
		{"Synced without plain", "", "[00:01.00] hello", models.SyncedLyrics{Synced: "[00:01.00] hello"}},
		{"Plain only", "hello", "", models.UnsyncedLyrics{Plain: "hello"}},
		{"Empty", "", "", models.ClearLyrics{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.plain, tt.synced); got != tt.want {
				t.Errorf("Classify(%q, %q) = %#v, want %#v", tt.plain, tt.synced, got, tt.want)
			}
		})
	}
}

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawLyrics
		want models.LyricsOutcome
	}{
		{"Instrumental flag", models.RawLyrics{Instrumental: true, PlainLyrics: strPtr("x")}, models.Instrumental{}},
		{"Synced", models.RawLyrics{SyncedLyrics: strPtr("[00:01.00] a"), PlainLyrics: strPtr("a")}, models.SyncedLyrics{Synced: "[00:01.00] a", Plain: "a"}},
		{"Plain", models.RawLyrics{PlainLyrics: strPtr("a")}, models.UnsyncedLyrics{Plain: "a"}},
		{"Empty strings", models.RawLyrics{PlainLyrics: strPtr(""), SyncedLyrics: strPtr("")}, models.NotFound{}},
		{"Nothing", models.RawLyrics{}, models.NotFound{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromRaw(tt.raw); got != tt.want {
				t.Errorf("FromRaw() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func newTrack(t *testing.T, dir string) models.Track {
	t.Helper()
	track := models.NewTrack(filepath.Join(dir, "song.mp3"), "Song", "Album", "Artist", 200)
	track.ID = 1
	return track
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("Download", func(t *testing.T) {
		tests := []struct {
			name    string
			raw     *models.RawLyrics
			message string
			call    string
			reload  bool
		}{
			{"Synced", &models.RawLyrics{SyncedLyrics: strPtr("[00:01.00] a"), PlainLyrics: strPtr("a")}, MsgSyncedDownloaded, "synced", true},
			{"Plain", &models.RawLyrics{PlainLyrics: strPtr("a")}, MsgPlainDownloaded, "plain", true},
			{"Instrumental", &models.RawLyrics{Instrumental: true}, MsgInstrumental, "instrumental", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
				emitter := &tu.RecordingEmitter{}
				r := NewResolver(ResolverOpts{Store: store, Provider: &tu.StubProvider{Raw: tt.raw}, Emitter: emitter})

				msg, err := r.Download(ctx, 1)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if msg != tt.message {
					t.Errorf("expected message %q, got %q", tt.message, msg)
				}
				if calls := store.Calls(); !slices.Equal(calls, []string{tt.call}) {
					t.Errorf("expected one %s update, got %v", tt.call, calls)
				}

				reloads := emitter.Events(events.ReloadTrackID)
				if tt.reload && (len(reloads) != 1 || reloads[0].Payload != int64(1)) {
					t.Errorf("expected one reload for track 1, got %v", reloads)
				}
				if !tt.reload && len(reloads) != 0 {
					t.Errorf("expected no reload, got %v", reloads)
				}
			})
		}
	})

	t.Run("Download not found", func(t *testing.T) {
		for name, provider := range map[string]*tu.StubProvider{
			"Provider 404": {},
			"Empty record": {Raw: &models.RawLyrics{}},
		} {
			t.Run(name, func(t *testing.T) {
				store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
				emitter := &tu.RecordingEmitter{}
				r := NewResolver(ResolverOpts{Store: store, Provider: provider, Emitter: emitter})

				_, err := r.Download(ctx, 1)
				if !errors.Is(err, shared.ErrLyricsNotFound) {
					t.Errorf("expected ErrLyricsNotFound, got %v", err)
				}
				if len(store.Calls()) != 0 {
					t.Errorf("expected no storage update, got %v", store.Calls())
				}
				if len(emitter.Events()) != 0 {
					t.Errorf("expected no events, got %v", emitter.Events())
				}
			})
		}
	})

	t.Run("Download provider failure", func(t *testing.T) {
		store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
		r := NewResolver(ResolverOpts{Store: store, Provider: &tu.StubProvider{Err: shared.ErrTimeout}})

		if _, err := r.Download(ctx, 1); !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if len(store.Calls()) != 0 {
			t.Errorf("expected no storage update, got %v", store.Calls())
		}
	})

	t.Run("Download unknown track", func(t *testing.T) {
		provider := &tu.StubProvider{}
		r := NewResolver(ResolverOpts{Store: tu.NewMemoryStore(), Provider: provider})

		if _, err := r.Download(ctx, 9); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if provider.Calls != 0 {
			t.Error("provider should not be queried for a missing track")
		}
	})

	t.Run("Apply", func(t *testing.T) {
		store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
		emitter := &tu.RecordingEmitter{}
		r := NewResolver(ResolverOpts{Store: store, Emitter: emitter})

		msg, err := r.Apply(ctx, 1, models.RawLyrics{PlainLyrics: strPtr("words")})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if msg != MsgPlainDownloaded {
			t.Errorf("unexpected message %q", msg)
		}
		if got := store.Track(1); got.PlainLyrics == nil || *got.PlainLyrics != "words" || got.SyncedLyrics != nil {
			t.Errorf("unexpected stored track: %+v", got)
		}
		if len(emitter.Events(events.ReloadTrackID)) != 1 {
			t.Error("expected a reload notification")
		}
	})

	t.Run("Save", func(t *testing.T) {
		tests := []struct {
			name   string
			plain  string
			synced string
			call   string
		}{
			{"Instrumental", "ignored", "[au: instrumental]", "instrumental"},
			{"Synced", "a", "[00:01.00] a", "synced"},
			{"Plain", "a", "", "plain"},
			{"Clear", "", "", "null"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
				emitter := &tu.RecordingEmitter{}
				r := NewResolver(ResolverOpts{Store: store, Emitter: emitter})

				msg, err := r.Save(ctx, 1, tt.plain, tt.synced)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if msg != MsgSaved {
					t.Errorf("expected %q, got %q", MsgSaved, msg)
				}
				if calls := store.Calls(); !slices.Equal(calls, []string{tt.call}) {
					t.Errorf("expected one %s update, got %v", tt.call, calls)
				}
				if len(emitter.Events(events.ReloadTrackID)) != 1 {
					t.Error("user saves always reload")
				}
			})
		}
	})

	t.Run("Storage failure sends no notification", func(t *testing.T) {
		store := tu.NewMemoryStore(newTrack(t, t.TempDir()))
		store.UpdateErr = errors.New("disk I/O error")
		emitter := &tu.RecordingEmitter{}
		r := NewResolver(ResolverOpts{Store: store, Emitter: emitter})

		_, err := r.Save(ctx, 1, "a", "[00:01.00] a")
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if len(emitter.Events()) != 0 {
			t.Errorf("expected no events, got %v", emitter.Events())
		}
	})

	t.Run("Resolve rejects NotFound from any source", func(t *testing.T) {
		track := newTrack(t, t.TempDir())
		store := tu.NewMemoryStore(track)
		r := NewResolver(ResolverOpts{Store: store})

		for _, source := range []models.LyricsSource{models.ProviderSource, models.UserSource} {
			if _, err := r.Resolve(ctx, &track, models.NotFound{}, source); !errors.Is(err, shared.ErrLyricsNotFound) {
				t.Errorf("%s: expected ErrLyricsNotFound, got %v", source, err)
			}
		}
	})

	t.Run("Missing provider", func(t *testing.T) {
		r := NewResolver(ResolverOpts{Store: tu.NewMemoryStore()})
		if _, err := r.Download(ctx, 1); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSidecar(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes and replaces files", func(t *testing.T) {
		dir := t.TempDir()
		track := newTrack(t, dir)
		lrc, txt := SidecarPaths(track.FilePath)
		w := NewSidecarWriter(nil)

		if _, err := w.Write(track.FilePath, models.SyncedLyrics{Synced: "[00:01.00] a", Plain: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, lrc)
		if got := tu.MustReadFile(t, txt); got != "a" {
			t.Errorf("expected txt content 'a', got %q", got)
		}

		if _, err := w.Write(track.FilePath, models.Instrumental{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := tu.MustReadFile(t, lrc); got != InstrumentalMarker {
			t.Errorf("expected marker, got %q", got)
		}
		if _, err := os.Stat(txt); !os.IsNotExist(err) {
			t.Error("expected stale txt to be removed")
		}

		if _, err := w.Write(track.FilePath, models.ClearLyrics{}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(lrc); !os.IsNotExist(err) {
			t.Error("expected lrc to be removed")
		}
	})

	t.Run("Undo restores previous content", func(t *testing.T) {
		dir := t.TempDir()
		track := newTrack(t, dir)
		lrc, txt := SidecarPaths(track.FilePath)
		if err := os.WriteFile(lrc, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}

		undo, err := NewSidecarWriter(nil).Write(track.FilePath, models.UnsyncedLyrics{Plain: "new"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := undo(); err != nil {
			t.Fatalf("undo failed: %v", err)
		}

		if got := tu.MustReadFile(t, lrc); got != "old" {
			t.Errorf("expected lrc restored to 'old', got %q", got)
		}
		if _, err := os.Stat(txt); !os.IsNotExist(err) {
			t.Error("expected txt to be removed by undo")
		}
	})

	t.Run("Resolver undoes files when storage fails", func(t *testing.T) {
		dir := t.TempDir()
		track := newTrack(t, dir)
		lrc, txt := SidecarPaths(track.FilePath)

		store := tu.NewMemoryStore(track)
		store.UpdateErr = shared.ErrStorage
		r := NewResolver(ResolverOpts{Store: store, Sidecar: NewSidecarWriter(nil)})

		if _, err := r.Save(ctx, 1, "a", "[00:01.00] a"); !errors.Is(err, shared.ErrStorage) {
			t.Fatalf("expected ErrStorage, got %v", err)
		}
		for _, p := range []string{lrc, txt} {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("expected %s to be absent after failed update", p)
			}
		}
	})

	t.Run("Resolver keeps files when storage succeeds", func(t *testing.T) {
		dir := t.TempDir()
		track := newTrack(t, dir)
		lrc, _ := SidecarPaths(track.FilePath)

		store := tu.NewMemoryStore(track)
		r := NewResolver(ResolverOpts{Store: store, Sidecar: NewSidecarWriter(nil)})

		if _, err := r.Save(ctx, 1, "", "[00:01.00] a"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := tu.MustReadFile(t, lrc); got != "[00:01.00] a" {
			t.Errorf("unexpected lrc content %q", got)
		}
	})

	t.Run("Unwritable directory", func(t *testing.T) {
		track := newTrack(t, filepath.Join(t.TempDir(), "missing"))
		store := tu.NewMemoryStore(track)
		r := NewResolver(ResolverOpts{Store: store, Sidecar: NewSidecarWriter(nil)})

		if _, err := r.Save(ctx, 1, "a", ""); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if len(store.Calls()) != 0 {
			t.Errorf("storage must not be updated when sidecar write fails, got %v", store.Calls())
		}
	})
}
