// Package speaker plays mp3, wav and flac files through the system audio output.
//
// It is the cgo-backed [player.Device]; the engine itself never imports it.
package speaker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	output "github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/desertthunder/libget/internal/models"
	"github.com/desertthunder/libget/internal/player"
	"github.com/desertthunder/libget/internal/shared"
)

const (
	DefaultSampleRate = beep.SampleRate(48000)

	outputBuffer    = 100 * time.Millisecond
	resampleQuality = 4
)

var _ player.Device = (*Device)(nil)

// Device drives the default audio output.
type Device struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
	ready      bool
	current    *source
	ctrl       *beep.Ctrl
	logger     *log.Logger
}

type source struct {
	stream beep.StreamSeekCloser
	format beep.Format
}

func (s *source) Close() error {
	return s.stream.Close()
}

func (s *source) duration() float64 {
	return s.format.SampleRate.D(s.stream.Len()).Seconds()
}

// New opens the audio output mixing at sampleRate (zero uses [DefaultSampleRate]).
//
// The output is opened here so that Play never blocks on the audio driver.
func New(sampleRate int, logger *log.Logger) (*Device, error) {
	d := newDevice(sampleRate, logger)
	if err := output.Init(d.sampleRate, d.sampleRate.N(outputBuffer)); err != nil {
		return nil, fmt.Errorf("%w: audio output: %v", shared.ErrPlayback, err)
	}
	d.ready = true
	return d, nil
}

func newDevice(sampleRate int, logger *log.Logger) *Device {
	sr := beep.SampleRate(sampleRate)
	if sr <= 0 {
		sr = DefaultSampleRate
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Device{sampleRate: sr, logger: logger}
}

// Open decodes the track's file based on its extension.
func (d *Device) Open(track models.Track) (player.Source, error) {
	src, err := decode(track.FilePath)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("decoded", "file", track.FileName, "sample_rate", src.format.SampleRate, "channels", src.format.NumChannels)
	return src, nil
}

func decode(path string) (*source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPlayback, err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	default:
		err = fmt.Errorf("unsupported format %q", ext)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: decode %s: %v", shared.ErrPlayback, filepath.Base(path), err)
	}
	return &source{stream: stream, format: format}, nil
}

// Play replaces the current output with src.
func (d *Device) Play(src player.Source) error {
	s, ok := src.(*source)
	if !ok {
		return fmt.Errorf("%w: foreign source %T", shared.ErrPlayback, src)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		return fmt.Errorf("%w: audio output not open", shared.ErrPlayback)
	}

	output.Clear()
	if d.current != nil {
		d.current.Close()
	}

	var streamer beep.Streamer = s.stream
	if s.format.SampleRate != d.sampleRate {
		streamer = beep.Resample(resampleQuality, s.format.SampleRate, d.sampleRate, s.stream)
	}

	d.current = s
	d.ctrl = &beep.Ctrl{Streamer: streamer}
	output.Play(d.ctrl)
	return nil
}

func (d *Device) Pause() error {
	return d.setPaused(true)
}

func (d *Device) Resume() error {
	return d.setPaused(false)
}

func (d *Device) setPaused(paused bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctrl == nil {
		return fmt.Errorf("%w: nothing loaded", shared.ErrPlayback)
	}
	output.Lock()
	d.ctrl.Paused = paused
	output.Unlock()
	return nil
}

// Seek moves to position seconds.
func (d *Device) Seek(position float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return fmt.Errorf("%w: nothing loaded", shared.ErrPlayback)
	}

	s := d.current
	n := s.format.SampleRate.N(time.Duration(position * float64(time.Second)))
	n = min(max(n, 0), s.stream.Len())

	output.Lock()
	err := s.stream.Seek(n)
	output.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPlayback, err)
	}
	return nil
}

func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready {
		output.Clear()
	}
	if d.current != nil {
		if err := d.current.Close(); err != nil {
			d.logger.Warn("failed to close stream", "error", err)
		}
	}
	d.current = nil
	d.ctrl = nil
	return nil
}

func (d *Device) Position() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return 0
	}
	output.Lock()
	p := d.current.stream.Position()
	output.Unlock()
	return d.current.format.SampleRate.D(p).Seconds()
}

func (d *Device) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return 0
	}
	return d.current.duration()
}

// ReadDuration decodes the file at path and returns its length in seconds.
// It does not touch the audio output.
func ReadDuration(path string) (float64, error) {
	src, err := decode(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return src.duration(), nil
}
