package tasks

import (
	"errors"
	"fmt"

	"github.com/desertthunder/libget/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListTracks Phase = iota
	DownloadLyrics
)

func (p Phase) String() string {
	switch p {
	case ListTracks:
		return "list_tracks"
	case DownloadLyrics:
		return "download_lyrics"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func listTracksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d tracks without lyrics", total),
		Data:    total,
	}
}

func downloadResultUpdate(step, total int, res TrackDownloadResult) ProgressUpdate {
	update := ProgressUpdate{Phase: DownloadLyrics, Step: step, Total: total, Data: res}

	switch {
	case res.Error == nil:
		update.Message = fmt.Sprintf("[%d/%d] ✓ track %d: %s", step, total, res.TrackID, res.Message)
	case errors.Is(res.Error, shared.ErrLyricsNotFound):
		update.Message = fmt.Sprintf("[%d/%d] - track %d: no lyrics found", step, total, res.TrackID)
	default:
		update.Message = fmt.Sprintf("[%d/%d] ✗ track %d: %v", step, total, res.TrackID, res.Error)
	}
	return update
}
