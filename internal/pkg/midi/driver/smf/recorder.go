package smf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gethiox/stradella/internal/pkg/midi/driver"
	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

const (
	Resolution = 960 // ticks per quarter note
	// SMF default tempo is 120 bpm, so one quarter note lasts half a second
	ticksPerSecond = Resolution * 2
)

// Recorder collects sent messages with their timing and saves them as a single-track
// Standard MIDI File on Close.
type Recorder struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	open   bool
	start  time.Time
	last   uint64 // absolute ticks of the last event
	track  gosmf.Track
	events int
}

// NewRecorder creates recorder writing into dir, file name is derived from session id.
func NewRecorder(dir, session string) *Recorder {
	name := fmt.Sprintf("stradella-%s-%s.mid", time.Now().Format("20060102-150405"), session)
	return &Recorder{
		path: filepath.Join(dir, name),
		now:  time.Now,
	}
}

func (r *Recorder) Name() string {
	return fmt.Sprintf("smf:%s", r.path)
}

func (r *Recorder) Path() string {
	return r.path
}

func (r *Recorder) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.MkdirAll(filepath.Dir(r.path), 0o777)
	if err != nil {
		return fmt.Errorf("failed to create recording directory: %w", err)
	}
	r.open = true
	r.start = r.now()
	r.last = 0
	r.track = nil
	r.events = 0
	return nil
}

func (r *Recorder) Send(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return driver.ErrNotOpen
	}

	elapsed := r.now().Sub(r.start)
	if elapsed < 0 {
		elapsed = 0
	}
	abs := uint64(elapsed.Seconds() * ticksPerSecond)
	if abs < r.last {
		abs = r.last
	}

	msg := make([]byte, len(data))
	copy(msg, data)
	r.track = append(r.track, gosmf.Event{Delta: uint32(abs - r.last), Message: msg})
	r.last = abs
	r.events++
	return nil
}

// Events returns number of recorded messages.
func (r *Recorder) Events() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// Close writes the recording, empty sessions leave no file behind.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return nil
	}
	r.open = false
	if r.events == 0 {
		return nil
	}

	track := r.track
	track.Close(0)

	var s gosmf.SMF
	s.TimeFormat = gosmf.MetricTicks(Resolution)
	s.Tracks = append(s.Tracks, track)

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	defer f.Close()

	_, err = s.WriteTo(f)
	if err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
