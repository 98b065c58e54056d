package player

import (
	"io"

	"github.com/desertthunder/libget/internal/models"
)

// Source is an opened, decoded track ready for output.
type Source = io.Closer

// Device is the audio output the engine drives.
//
// Open may block on disk I/O and is called without the engine lock held.
// Play takes ownership of src and releases any previously playing source.
type Device interface {
	Open(track models.Track) (Source, error)
	Play(src Source) error
	Pause() error
	Resume() error
	Seek(position float64) error
	Stop() error
	Position() float64 // seconds
	Duration() float64 // seconds
}
