package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
)

type fakeController struct {
	snap    models.PlayerSnapshot
	seeks   []float64
	toggles int
	stops   int
	err     error
}

func (f *fakeController) TogglePause() error {
	f.toggles++
	return f.err
}

func (f *fakeController) SeekBy(delta float64) error {
	f.seeks = append(f.seeks, delta)
	return f.err
}

func (f *fakeController) Stop() error {
	f.stops++
	return f.err
}

func (f *fakeController) Snapshot() models.PlayerSnapshot { return f.snap }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// press sends msg and runs the returned command once, feeding its result back.
func press(t *testing.T, m *Model, msg tea.Msg) tea.Msg {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	out := cmd()
	m.Update(out)
	return out
}

func playingSnapshot() models.PlayerSnapshot {
	id := int64(7)
	return models.PlayerSnapshot{Status: models.Playing, TrackID: &id, Title: "Holocene", Position: 62, Duration: 200}
}

func TestModel(t *testing.T) {
	t.Run("seek step default", func(t *testing.T) {
		m := NewModel(&fakeController{}, nil, 0)
		if m.seekStep != defaultSeekStep {
			t.Errorf("seekStep = %v, want %v", m.seekStep, defaultSeekStep)
		}
	})

	t.Run("keys drive the controller", func(t *testing.T) {
		ctrl := &fakeController{snap: playingSnapshot()}
		m := NewModel(ctrl, nil, 10)

		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		press(t, m, tea.KeyMsg{Type: tea.KeyRight})
		press(t, m, runeKey('s'))

		if ctrl.toggles != 1 {
			t.Errorf("toggles = %d, want 1", ctrl.toggles)
		}
		if len(ctrl.seeks) != 2 || ctrl.seeks[0] != -10 || ctrl.seeks[1] != 10 {
			t.Errorf("seeks = %v, want [-10 10]", ctrl.seeks)
		}
		if ctrl.stops != 1 {
			t.Errorf("stops = %d, want 1", ctrl.stops)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m := NewModel(&fakeController{}, nil, 5)
		_, cmd := m.Update(runeKey('q'))
		if cmd == nil {
			t.Fatal("expected a command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("command failure is shown and cleared", func(t *testing.T) {
		ctrl := &fakeController{err: errors.New("invalid state")}
		m := NewModel(ctrl, nil, 5)

		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if m.err == nil {
			t.Fatal("expected error to be recorded")
		}
		if !strings.Contains(m.View(), "invalid state") {
			t.Errorf("view does not show error:\n%s", m.View())
		}

		ctrl.err = nil
		press(t, m, tea.KeyMsg{Type: tea.KeySpace})
		if m.err != nil {
			t.Errorf("err = %v, want nil", m.err)
		}
	})

	t.Run("help toggle", func(t *testing.T) {
		m := NewModel(&fakeController{}, nil, 5)
		m.Update(runeKey('?'))
		if !m.help.ShowAll {
			t.Error("expected full help")
		}
		if !strings.Contains(m.View(), "seek forward") {
			t.Error("full help should list seek bindings")
		}
	})
}

func TestSnapshotFeed(t *testing.T) {
	t.Run("snapshot updates the view", func(t *testing.T) {
		feed := make(chan events.Event, 2)
		feed <- events.Event{Name: events.PlayerState, Payload: playingSnapshot()}

		m := NewModel(&fakeController{}, feed, 5)
		msg := m.Init()()
		_, next := m.Update(msg)
		if next == nil {
			t.Error("expected the feed to be re-armed")
		}

		view := m.View()
		for _, want := range []string{"playing", "Holocene", "1:02 / 3:20"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("skips foreign payloads", func(t *testing.T) {
		feed := make(chan events.Event, 2)
		feed <- events.Event{Name: events.ReloadTrackID, Payload: int64(3)}
		feed <- events.Event{Name: events.PlayerState, Payload: playingSnapshot()}

		m := NewModel(&fakeController{}, feed, 5)
		msg, ok := m.Init()().(Msg)
		if !ok || msg.kind != MsgSnapshot {
			t.Fatalf("got %#v, want snapshot message", msg)
		}
	})

	t.Run("closed feed quits", func(t *testing.T) {
		feed := make(chan events.Event)
		close(feed)

		m := NewModel(&fakeController{}, feed, 5)
		_, cmd := m.Update(m.Init()())
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("bus subscription", func(t *testing.T) {
		bus := events.NewBus(nil)
		sub := bus.Subscribe(events.DefaultBufferSize, events.PlayerState)
		defer sub.Close()

		m := NewModel(&fakeController{}, sub.C(), 5)
		bus.Emit(events.PlayerState, playingSnapshot())
		m.Update(m.Init()())

		if m.snapshot.Status != models.Playing {
			t.Errorf("status = %v, want playing", m.snapshot.Status)
		}
	})
}

func TestView(t *testing.T) {
	t.Run("stopped without track", func(t *testing.T) {
		m := NewModel(&fakeController{}, nil, 5)
		view := m.View()
		for _, want := range []string{"Now Playing", "stopped", "No track loaded", "0:00 / 0:00"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	t.Run("untitled track", func(t *testing.T) {
		snap := playingSnapshot()
		snap.Title = ""
		snap.Status = models.Paused
		m := NewModel(&fakeController{snap: snap}, nil, 5)
		view := m.View()
		if !strings.Contains(view, "Track 7") || !strings.Contains(view, "paused") {
			t.Errorf("unexpected view:\n%s", view)
		}
	})

	t.Run("window resize bounds the bar", func(t *testing.T) {
		m := NewModel(&fakeController{}, nil, 5)
		m.Update(tea.WindowSizeMsg{Width: 300, Height: 40})
		if m.bar.Width != maxBarWidth {
			t.Errorf("bar width = %d, want %d", m.bar.Width, maxBarWidth)
		}
		m.Update(tea.WindowSizeMsg{Width: 12, Height: 40})
		if m.bar.Width != 10 {
			t.Errorf("bar width = %d, want 10", m.bar.Width)
		}
	})
}
