package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vaulted/src/features/config"
	"vaulted/src/features/playback"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// BeepDevice implements playback.Device on top of the beep speaker. The
// speaker is initialized once with the configured output sample rate; tracks
// with a different native rate are resampled on the fly.
type BeepDevice struct {
	outRate     beep.SampleRate
	bufferMs    int
	initialized bool

	ctrl       *beep.Ctrl
	streamer   beep.StreamSeekCloser
	format     beep.Format
	file       *os.File
	generation int
	onEnded    func()
}

// NewBeepDevice creates a playback device using the configured output
// sample rate and buffer size.
func NewBeepDevice(cfg *config.Manager) playback.Device {
	pb := cfg.Get().Playback
	rate := pb.SampleRate
	if rate <= 0 {
		rate = 44100
	}
	bufferMs := pb.BufferMs
	if bufferMs <= 0 {
		bufferMs = 100
	}
	return &BeepDevice{
		outRate:  beep.SampleRate(rate),
		bufferMs: bufferMs,
	}
}

// Open decodes the file and loads it into the speaker, paused at position 0.
func (d *BeepDevice) Open(path string) error {
	d.Stop()

	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return err
	}

	if !d.initialized {
		if err := speaker.Init(d.outRate, d.outRate.N(time.Duration(d.bufferMs)*time.Millisecond)); err != nil {
			streamer.Close()
			f.Close()
			return err
		}
		d.initialized = true
	}

	d.file = f
	d.streamer = streamer
	d.format = format
	d.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}

	// generation and onEnded are read by the speaker callback under the
	// speaker lock, so writes to them take the same lock.
	speaker.Lock()
	d.generation++
	gen := d.generation
	speaker.Unlock()

	var out beep.Streamer = d.ctrl
	if format.SampleRate != d.outRate {
		out = beep.Resample(4, format.SampleRate, d.outRate, d.ctrl)
	}

	// The callback runs on the speaker goroutine with its lock held, so the
	// ended handler is dispatched on a fresh goroutine. The generation check
	// drops callbacks from streams already replaced by a newer Open.
	speaker.Play(beep.Seq(out, beep.Callback(func() {
		if gen != d.generation {
			return
		}
		if d.onEnded != nil {
			go d.onEnded()
		}
	})))

	return nil
}

// Play resumes the loaded track.
func (d *BeepDevice) Play() {
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
}

// Pause pauses the loaded track keeping its position.
func (d *BeepDevice) Pause() {
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
}

// Stop unloads the current track and releases its file handle.
func (d *BeepDevice) Stop() {
	speaker.Lock()
	d.generation++
	speaker.Unlock()
	if d.initialized {
		speaker.Clear()
	}
	if d.streamer != nil {
		d.streamer.Close()
		d.streamer = nil
	}
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.ctrl = nil
}

// Seek moves the playback position of the current track.
func (d *BeepDevice) Seek(seconds float64) error {
	if d.streamer == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	sample := d.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if sample < 0 {
		sample = 0
	}
	if sample >= d.streamer.Len() {
		sample = d.streamer.Len() - 1
	}
	return d.streamer.Seek(sample)
}

// Position returns the playback position of the current track in seconds.
func (d *BeepDevice) Position() float64 {
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := d.format.SampleRate.D(d.streamer.Position())
	speaker.Unlock()
	return pos.Seconds()
}

// NaturalDuration returns the full length of the current track in seconds.
func (d *BeepDevice) NaturalDuration() float64 {
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len()).Seconds()
}

// OnEnded registers the handler invoked when a track finishes naturally.
func (d *BeepDevice) OnEnded(fn func()) {
	speaker.Lock()
	d.onEnded = fn
	speaker.Unlock()
}
