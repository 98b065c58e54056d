package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/libget/internal/events"
	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/shared"
)

const (
	defaultSeekStep = 5.0
	maxBarWidth     = 60
)

// Controller is the subset of the player engine the view drives.
type Controller interface {
	TogglePause() error
	SeekBy(delta float64) error
	Stop() error
	Snapshot() models.PlayerSnapshot
}

// Model represents the now playing view state.
type Model struct {
	player   Controller
	feed     <-chan events.Event
	seekStep float64
	snapshot models.PlayerSnapshot
	err      error
	bar      progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a view over player fed by feed. A non-positive seekStep uses 5 seconds.
func NewModel(player Controller, feed <-chan events.Event, seekStep float64) *Model {
	if seekStep <= 0 {
		seekStep = defaultSeekStep
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = maxBarWidth / 2
	return &Model{
		player:   player,
		feed:     feed,
		seekStep: seekStep,
		snapshot: player.Snapshot(),
		bar:      bar,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts listening on the snapshot feed.
func (m *Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-20, maxBarWidth), 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		switch msg.kind {
		case MsgSnapshot:
			m.snapshot = msg.data.(models.PlayerSnapshot)
			return m, m.waitForSnapshot()
		case MsgCommandDone:
			res := msg.data.(commandResult)
			if res.err != nil {
				m.err = fmt.Errorf("%s: %w", res.op, res.err)
			} else {
				m.err = nil
			}
			m.snapshot = m.player.Snapshot()
			return m, nil
		case MsgFeedClosed:
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the latest snapshot.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Now Playing"))
	b.WriteString("\n")
	b.WriteString(renderStatus(m.snapshot.Status))
	b.WriteString("  ")
	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.snapshot.Progress()))
	b.WriteString(fmt.Sprintf("  %s / %s",
		shared.FormatDuration(m.snapshot.Position),
		shared.FormatDuration(m.snapshot.Duration),
	))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.command("pause/resume", m.player.TogglePause)
	case key.Matches(msg, m.keys.backward):
		return m, m.command("seek", func() error { return m.player.SeekBy(-m.seekStep) })
	case key.Matches(msg, m.keys.forward):
		return m, m.command("seek", func() error { return m.player.SeekBy(m.seekStep) })
	case key.Matches(msg, m.keys.stop):
		return m, m.command("stop", m.player.Stop)
	}
	return m, nil
}

func (m *Model) command(op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg(op, fn())
	}
}

// waitForSnapshot blocks on the feed, skipping events that do not carry a snapshot.
func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		for ev := range m.feed {
			if snap, ok := ev.Payload.(models.PlayerSnapshot); ok {
				return snapshotMsg(snap)
			}
		}
		return feedClosedMsg()
	}
}

func (m *Model) renderTitle() string {
	if !m.snapshot.HasTrack() {
		return styles.muted.Render("No track loaded")
	}
	if m.snapshot.Title != "" {
		return m.snapshot.Title
	}
	return fmt.Sprintf("Track %d", *m.snapshot.TrackID)
}

func renderStatus(status models.PlayerStatus) string {
	switch status {
	case models.Playing:
		return styles.playing.Render("▶ playing")
	case models.Paused:
		return styles.paused.Render("⏸ paused")
	default:
		return styles.muted.Render("■ stopped")
	}
}
