package lyrics

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/libget/internal/models"
)

// SidecarWriter mirrors persisted lyrics into .lrc and .txt files beside the audio file.
type SidecarWriter struct {
	logger *log.Logger
}

// NewSidecarWriter creates a writer. A nil logger discards output.
func NewSidecarWriter(logger *log.Logger) *SidecarWriter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SidecarWriter{logger: logger}
}

// SidecarPaths returns the .lrc and .txt paths for the audio file at path.
func SidecarPaths(path string) (lrc, txt string) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + ".lrc", base + ".txt"
}

// fileState is the content of a file before it was changed.
type fileState struct {
	path   string
	data   []byte
	exists bool
}

func snapshot(path string) (fileState, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return fileState{path: path, data: data, exists: true}, nil
	case errors.Is(err, fs.ErrNotExist):
		return fileState{path: path}, nil
	default:
		return fileState{}, err
	}
}

func (s fileState) restore() error {
	if s.exists {
		return os.WriteFile(s.path, s.data, 0o644)
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Write brings the sidecar files in line with outcome. Empty content removes a file.
//
// The returned undo restores both files to their previous content.
// On error nothing is left changed.
func (w *SidecarWriter) Write(audioPath string, outcome models.LyricsOutcome) (undo func() error, err error) {
	lrcPath, txtPath := SidecarPaths(audioPath)

	var lrc, txt string
	switch o := outcome.(type) {
	case models.SyncedLyrics:
		lrc, txt = o.Synced, o.Plain
	case models.UnsyncedLyrics:
		txt = o.Plain
	case models.Instrumental:
		lrc = InstrumentalMarker
	case models.ClearLyrics:
	case models.NotFound:
		return func() error { return nil }, nil
	default:
		panic(fmt.Sprintf("lyrics: unhandled outcome %T", outcome))
	}

	var states []fileState
	undo = func() error {
		var errs []error
		for i := len(states) - 1; i >= 0; i-- {
			errs = append(errs, states[i].restore())
		}
		return errors.Join(errs...)
	}

	for _, f := range []struct{ path, content string }{{lrcPath, lrc}, {txtPath, txt}} {
		state, err := snapshot(f.path)
		if err != nil {
			return nil, w.abort(undo, fmt.Errorf("failed to read %s: %w", f.path, err))
		}
		states = append(states, state)

		if f.content == "" {
			err = os.Remove(f.path)
			if errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
		} else {
			err = os.WriteFile(f.path, []byte(f.content), 0o644)
		}
		if err != nil {
			return nil, w.abort(undo, fmt.Errorf("failed to write %s: %w", f.path, err))
		}
	}

	w.logger.Debug("sidecar files written", "lrc", lrc != "", "txt", txt != "", "path", audioPath)
	return undo, nil
}

func (w *SidecarWriter) abort(undo func() error, err error) error {
	if uerr := undo(); uerr != nil {
		w.logger.Warn("failed to restore sidecar files", "error", uerr)
	}
	return err
}
