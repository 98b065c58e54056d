package testing

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

// MemoryStore is an in-memory track store recording every update call.
type MemoryStore struct {
	mu        sync.Mutex
	tracks    map[int64]models.Track
	calls     []string
	UpdateErr error // returned by every update when set
}

func NewMemoryStore(tracks ...models.Track) *MemoryStore {
	s := &MemoryStore{tracks: make(map[int64]models.Track)}
	for _, t := range tracks {
		s.tracks[t.ID] = t
	}
	return s
}

func (s *MemoryStore) GetTrackByID(ctx context.Context, id int64) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	return &t, nil
}

func (s *MemoryStore) ListNoLyricsIDs(ctx context.Context, skipNotNeeded bool) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, t := range s.tracks {
		if skipNotNeeded && (t.HasSyncedLyrics() || t.Instrumental) {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) UpdateSyncedLyrics(ctx context.Context, id int64, synced, plain string) error {
	return s.update("synced", id, func(t *models.Track) {
		t.SyncedLyrics, t.PlainLyrics, t.Instrumental = &synced, &plain, false
	})
}

func (s *MemoryStore) UpdatePlainLyrics(ctx context.Context, id int64, plain string) error {
	return s.update("plain", id, func(t *models.Track) {
		t.SyncedLyrics, t.PlainLyrics, t.Instrumental = nil, &plain, false
	})
}

func (s *MemoryStore) UpdateInstrumental(ctx context.Context, id int64) error {
	return s.update("instrumental", id, func(t *models.Track) {
		t.SyncedLyrics, t.PlainLyrics, t.Instrumental = nil, nil, true
	})
}

func (s *MemoryStore) UpdateNullLyrics(ctx context.Context, id int64) error {
	return s.update("null", id, func(t *models.Track) {
		t.SyncedLyrics, t.PlainLyrics, t.Instrumental = nil, nil, false
	})
}

func (s *MemoryStore) update(call string, id int64, fn func(*models.Track)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, call)
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	t, ok := s.tracks[id]
	if !ok {
		return fmt.Errorf("%w: %w: %d", shared.ErrStorage, shared.ErrTrackNotFound, id)
	}
	fn(&t)
	s.tracks[id] = t
	return nil
}

// Calls returns the update methods invoked so far ("synced", "plain", "instrumental", "null").
func (s *MemoryStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// Track returns the stored copy of a track.
func (s *MemoryStore) Track(id int64) models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks[id]
}

// RecordingEmitter records every emitted event in order.
type RecordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *RecordingEmitter) Emit(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{Name: name, Payload: payload})
}

// Events returns recorded events, optionally filtered to one name.
func (r *RecordingEmitter) Events(name ...string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, ev := range r.events {
		if len(name) == 0 || slices.Contains(name, ev.Name) {
			out = append(out, ev)
		}
	}
	return out
}

// StubProvider returns a fixed record or error from GetLyrics.
type StubProvider struct {
	Raw   *models.RawLyrics
	Err   error
	Calls int
}

func (p *StubProvider) GetLyrics(ctx context.Context, params models.LookupParams) (*models.RawLyrics, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Raw == nil {
		return nil, shared.ErrLyricsNotFound
	}
	raw := *p.Raw
	return &raw, nil
}

// FakeDevice is a playback device with a manually advanced clock.
type FakeDevice struct {
	mu       sync.Mutex
	current  *FakeSource
	playing  bool
	position float64
	duration float64

	OpenErr error
	PlayErr error
	SeekErr error
	StopErr error
}

// FakeSource is the handle returned by [FakeDevice.Open].
type FakeSource struct {
	Track  models.Track
	Closed bool
}

func (s *FakeSource) Close() error {
	s.Closed = true
	return nil
}

func (d *FakeDevice) Open(track models.Track) (io.Closer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	return &FakeSource{Track: track}, nil
}

func (d *FakeDevice) Play(src io.Closer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := src.(*FakeSource)
	if !ok {
		return fmt.Errorf("%w: foreign source %T", shared.ErrPlayback, src)
	}
	if d.PlayErr != nil {
		return d.PlayErr
	}
	if d.current != nil {
		d.current.Close()
	}
	d.current = s
	d.playing = true
	d.position = 0
	d.duration = s.Track.Duration
	return nil
}

func (d *FakeDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = false
	return nil
}

func (d *FakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.playing = true
	return nil
}

func (d *FakeDevice) Seek(position float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SeekErr != nil {
		return d.SeekErr
	}
	d.position = position
	return nil
}

func (d *FakeDevice) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.StopErr != nil {
		return d.StopErr
	}
	if d.current != nil {
		d.current.Close()
	}
	d.current = nil
	d.playing = false
	d.position = 0
	d.duration = 0
	return nil
}

func (d *FakeDevice) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position
}

func (d *FakeDevice) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duration
}

// Advance moves the clock forward by seconds while playing.
func (d *FakeDevice) Advance(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.playing {
		d.position += seconds
	}
}

// SetPosition forces the reported position, e.g. to simulate a device clock running backwards.
func (d *FakeDevice) SetPosition(position float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.position = position
}

// Playing reports whether output is running.
func (d *FakeDevice) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.playing
}
