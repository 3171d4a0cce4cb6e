package stradella

import (
	"sync"

	"github.com/gethiox/stradella/internal/pkg/midi"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Sink accepts batches of midi events, midi.Queue satisfies it.
type Sink interface {
	Enqueue(events ...midi.Event)
}

type activeNotes struct {
	notes    []int // frozen at first press
	velocity int
	count    int
}

// ActiveCell describes a held button for observers (ui, display, leds).
type ActiveCell struct {
	Cell     Cell
	Notes    []int
	Velocity int
	Holders  int
}

// Tracker reference-counts button activations coming from several sources and guarantees
// exactly one note-on/note-off pair per activation cycle of a cell.
// Every emitted note is tracked and released precisely on the last release of the cell,
// even when voicing changes in the meantime.
type Tracker struct {
	mu      sync.Mutex
	active  map[int]*activeNotes
	voicing Voicing
	channel uint8
	sink    Sink
}

func NewTracker(sink Sink, channel uint8, voicing Voicing) *Tracker {
	return &Tracker{
		active:  make(map[int]*activeNotes),
		voicing: voicing,
		channel: channel & 0x0f,
		sink:    sink,
	}
}

// Press registers activation of a cell, notes are emitted on the first one only.
// It returns resolved notes when note-on events were emitted.
func (t *Tracker) Press(cell Cell, velocity int, left, right bool) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cell.Key()
	an, ok := t.active[key]
	if ok {
		an.count++
		return nil
	}

	notes := Resolve(cell.Row, cell.Column, &t.voicing, left, right)
	t.active[key] = &activeNotes{notes: notes, velocity: velocity, count: 1}
	t.sink.Enqueue(t.noteEvents(midi.NoteOn, notes, velocity)...)
	return notes
}

// Release drops one activation of a cell, notes are turned off when none is left.
// Releasing a cell that is not held is a no-op. It returns released notes, if any.
func (t *Tracker) Release(cell Cell) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := cell.Key()
	an, ok := t.active[key]
	if !ok {
		return nil
	}

	an.count--
	if an.count > 0 {
		return nil
	}

	delete(t.active, key)
	t.sink.Enqueue(t.noteEvents(midi.NoteOff, an.notes, 0)...)
	return an.notes
}

// Panic turns off every tracked note, sends all-notes-off/all-sound-off to every channel
// and forgets all held cells.
func (t *Tracker) Panic() {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []midi.Event
	for _, key := range t.sortedKeys() {
		events = append(events, t.noteEvents(midi.NoteOff, t.active[key].notes, 0)...)
	}
	events = append(events, midi.PanicEvents()...)

	t.active = make(map[int]*activeNotes)
	t.sink.Enqueue(events...)
}

// Retrigger restarts every held cell with the given velocity and modifier state.
// Reference counts stay untouched, the new note sets are frozen in place of the old ones.
// It returns number of retriggered cells.
func (t *Tracker) Retrigger(velocity int, left, right bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.active) == 0 {
		return 0
	}

	keys := t.sortedKeys()
	var events []midi.Event
	for _, key := range keys {
		events = append(events, t.noteEvents(midi.NoteOff, t.active[key].notes, 0)...)
	}
	for _, key := range keys {
		an := t.active[key]
		cell := CellFromKey(key)
		an.notes = Resolve(cell.Row, cell.Column, &t.voicing, left, right)
		an.velocity = velocity
		events = append(events, t.noteEvents(midi.NoteOn, an.notes, velocity)...)
	}
	t.sink.Enqueue(events...)
	return len(keys)
}

// SetVoicing replaces voicing used by next presses, held cells keep their notes.
func (t *Tracker) SetVoicing(v Voicing) {
	t.mu.Lock()
	t.voicing = v
	t.mu.Unlock()
}

func (t *Tracker) Voicing() Voicing {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voicing
}

func (t *Tracker) Channel() uint8 {
	return t.channel
}

// Active returns snapshot of held cells ordered by row and column.
func (t *Tracker) Active() []ActiveCell {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cells = make([]ActiveCell, 0, len(t.active))
	for _, key := range t.sortedKeys() {
		an := t.active[key]
		cells = append(cells, ActiveCell{
			Cell:     CellFromKey(key),
			Notes:    slices.Clone(an.notes),
			Velocity: an.velocity,
			Holders:  an.count,
		})
	}
	return cells
}

func (t *Tracker) sortedKeys() []int {
	keys := maps.Keys(t.active)
	slices.Sort(keys)
	return keys
}

func (t *Tracker) noteEvents(messageType uint8, notes []int, velocity int) []midi.Event {
	var events = make([]midi.Event, 0, len(notes))
	for _, n := range notes {
		events = append(events, midi.NoteEvent(messageType, t.channel, n, velocity))
	}
	return events
}
