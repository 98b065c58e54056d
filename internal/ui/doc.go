// Package ui implements the now playing terminal view using bubbletea's Elm architecture.
//
// The [Model] renders the latest player snapshot: status, track title, elapsed and total time
// and a progress bar. Snapshots arrive on an event feed (normally a bus subscription to
// player-state) and are read by a [tea.Cmd] that re-arms itself after every message, so the view
// never polls the engine on its own.
//
// Keys: space pauses or resumes, ←/→ seek by the configured step, s stops, ? toggles help, q quits.
// Player commands run as [tea.Cmd]s and report failures in the view instead of exiting.
package ui
