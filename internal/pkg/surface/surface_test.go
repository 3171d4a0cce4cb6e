package surface

import (
	"os"
	"testing"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

type fixedVelocity int

func (v fixedVelocity) Velocity() int { return int(v) }

const kbd = "event3"

var cMajor = stradella.Cell{Row: stradella.Major, Column: 2}

func newSurface(cfg Config, velocity int) (*Surface, *midi.Queue) {
	q := midi.NewQueue(0, midi.DropOldest)
	voicing := stradella.DefaultVoicing()
	tracker := stradella.NewTracker(q, 0, voicing)
	return New(cfg, keymap.Default(voicing), tracker, fixedVelocity(velocity)), q
}

func noteOns(events []midi.Event) []midi.Event {
	var ons []midi.Event
	for _, ev := range events {
		if ev.Type() == midi.NoteOn {
			ons = append(ons, ev)
		}
	}
	return ons
}

func TestKeyPressAndRelease(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	assert.True(t, s.HandleKey(kbd, evdev.KEY_R, 1))
	assert.Equal(t, []midi.Event{
		midi.NoteEvent(midi.NoteOn, 0, 48, 90),
		midi.NoteEvent(midi.NoteOn, 0, 52, 90),
		midi.NoteEvent(midi.NoteOn, 0, 55, 90),
	}, q.DrainAll())

	state := s.State()
	require.Len(t, state.Active, 1)
	assert.Equal(t, cMajor, state.Active[0].Cell)
	assert.Equal(t, cMajor.String(), state.LastAction)

	assert.True(t, s.HandleKey(kbd, evdev.KEY_R, 0))
	assert.Equal(t, []midi.Event{
		midi.NoteEvent(midi.NoteOff, 0, 48, 0),
		midi.NoteEvent(midi.NoteOff, 0, 52, 0),
		midi.NoteEvent(midi.NoteOff, 0, 55, 0),
	}, q.DrainAll())
	assert.Empty(t, s.State().Active)
}

func TestKeyRepeatIgnored(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.HandleKey(kbd, evdev.KEY_F, 1)
	q.DrainAll()

	assert.True(t, s.HandleKey(kbd, evdev.KEY_F, 2))
	assert.True(t, s.HandleKey(kbd, evdev.KEY_F, 1)) // press without release
	assert.Empty(t, q.DrainAll())

	s.HandleKey(kbd, evdev.KEY_F, 0)
	assert.Len(t, q.DrainAll(), 1)
	assert.Empty(t, s.State().Active)
}

func TestUnmappedKey(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)
	assert.False(t, s.HandleKey(kbd, evdev.KEY_F1, 1))
	assert.False(t, s.HandleKey(kbd, evdev.KEY_F1, 0))
	assert.False(t, s.HandleKey(kbd, evdev.KEY_F1, 2))
	assert.Empty(t, q.DrainAll())
}

func TestSameCellFromTwoSources(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.HandleKey(kbd, evdev.KEY_R, 1)
	s.HandleKey("event7", evdev.KEY_R, 1)
	s.PointerDown(cMajor, false, false)
	assert.Len(t, q.DrainAll(), 3) // single note-on set

	s.HandleKey(kbd, evdev.KEY_R, 0)
	s.PointerUp()
	assert.Empty(t, q.DrainAll())

	s.HandleKey("event7", evdev.KEY_R, 0)
	assert.Len(t, q.DrainAll(), 3)
}

func TestModifiers(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	assert.True(t, s.HandleKey("event5", evdev.BTN_LEFT, 1))
	assert.True(t, s.State().Left)
	s.HandleKey(kbd, evdev.KEY_R, 1)
	assert.Len(t, q.DrainAll(), 4) // seventh added

	s.HandleKey("event5", evdev.BTN_LEFT, 0)
	assert.False(t, s.State().Left)
	s.HandleKey(kbd, evdev.KEY_R, 0)
	assert.Len(t, q.DrainAll(), 4) // frozen notes released
}

func TestPointerClick(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.PointerDown(cMajor, false, true)
	assert.True(t, s.State().Right)
	ons := noteOns(q.DrainAll())
	require.Len(t, ons, 4)
	assert.Equal(t, midi.NoteEvent(midi.NoteOn, 0, 62, 90), ons[3]) // ninth

	// moving to another cell releases the previous one
	s.PointerDown(stradella.Cell{Row: stradella.Bass, Column: 2}, false, false)
	events := q.DrainAll()
	assert.Len(t, events, 5)
	assert.Equal(t, midi.NoteEvent(midi.NoteOn, 0, 36, 90), events[4])

	s.PointerUp()
	assert.Equal(t, []midi.Event{midi.NoteEvent(midi.NoteOff, 0, 36, 0)}, q.DrainAll())
	assert.False(t, s.State().Right)

	s.PointerUp()
	s.PointerDown(stradella.Cell{Row: stradella.Row(9)}, false, false)
	assert.Empty(t, q.DrainAll())
}

func TestPanicKey(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.HandleKey(kbd, evdev.KEY_R, 1)
	s.HandleKey(kbd, evdev.KEY_F, 1)
	q.DrainAll()

	assert.True(t, s.HandleKey(kbd, evdev.KEY_ESC, 1))
	events := q.DrainAll()
	assert.Len(t, events, 4+len(midi.PanicEvents()))
	assert.Empty(t, s.State().Active)
	assert.Equal(t, "PANIC", s.State().LastAction)

	// releases after panic are swallowed
	s.HandleKey(kbd, evdev.KEY_R, 0)
	s.HandleKey(kbd, evdev.KEY_F, 0)
	assert.Empty(t, q.DrainAll())

	// and the keys work again
	s.HandleKey(kbd, evdev.KEY_R, 1)
	assert.Len(t, q.DrainAll(), 3)
}

func TestVelocitySelection(t *testing.T) {
	for _, tc := range []struct {
		name       string
		fixed      int
		floor      int
		expression int
		expected   int
	}{
		{name: "expression", expression: 77, floor: 1, expected: 77},
		{name: "floor", expression: 0, floor: 1, expected: 1},
		{name: "custom floor", expression: 10, floor: 40, expected: 40},
		{name: "fixed", fixed: 100, expression: 3, floor: 1, expected: 100},
		{name: "fixed clamped", fixed: 300, expression: 3, expected: 127},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Velocity = tc.fixed
			cfg.VelocityFloor = tc.floor
			s, q := newSurface(cfg, tc.expression)

			s.HandleKey(kbd, evdev.KEY_F, 1)
			assert.Equal(t, []midi.Event{midi.NoteEvent(midi.NoteOn, 0, 36, tc.expected)}, q.DrainAll())
			assert.Equal(t, tc.expected, s.State().Velocity)
		})
	}
}

func TestDirectionChangedRetriggers(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.DirectionChanged(50)
	assert.Empty(t, q.DrainAll())

	s.HandleKey(kbd, evdev.KEY_F, 1)
	q.DrainAll()

	s.DirectionChanged(50)
	assert.Equal(t, []midi.Event{
		midi.NoteEvent(midi.NoteOff, 0, 36, 0),
		midi.NoteEvent(midi.NoteOn, 0, 36, 50),
	}, q.DrainAll())
	assert.Equal(t, "retrigger 1", s.State().LastAction)

	s.HandleKey(kbd, evdev.KEY_F, 0)
	assert.Equal(t, []midi.Event{midi.NoteEvent(midi.NoteOff, 0, 36, 0)}, q.DrainAll())
}

func TestKeymapReplacedWhileHeld(t *testing.T) {
	s, q := newSurface(DefaultConfig(), 90)

	s.HandleKey(kbd, evdev.KEY_F, 1)
	q.DrainAll()

	m := keymap.Default(stradella.DefaultVoicing())
	m.Set(keymap.Entry{Code: evdev.KEY_F, Cell: cMajor})
	s.SetMapper(m)

	// release reaches the cell pressed before reload
	s.HandleKey(kbd, evdev.KEY_F, 0)
	assert.Equal(t, []midi.Event{midi.NoteEvent(midi.NoteOff, 0, 36, 0)}, q.DrainAll())

	s.HandleKey(kbd, evdev.KEY_F, 1)
	assert.Len(t, q.DrainAll(), 3)
}
