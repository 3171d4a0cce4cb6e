package stradella

import (
	"fmt"
)

// CounterbassInterval is the distance between row root and counterbass note in semitones.
type CounterbassInterval int

const (
	MajorThird   CounterbassInterval = 4
	PerfectFifth CounterbassInterval = 7
)

func (c CounterbassInterval) String() string {
	switch c {
	case MajorThird:
		return "third"
	case PerfectFifth:
		return "fifth"
	default:
		return fmt.Sprintf("CounterbassInterval(%d)", int(c))
	}
}

func ParseCounterbassInterval(s string) (CounterbassInterval, error) {
	switch s {
	case "third", "major_third":
		return MajorThird, nil
	case "fifth", "perfect_fifth", "":
		return PerfectFifth, nil
	default:
		return 0, fmt.Errorf("unsupported counterbass interval: \"%s\"", s)
	}
}

type InversionDirection int

const (
	InvertUp   InversionDirection = iota // lowest note goes one octave up
	InvertDown                           // highest note goes one octave down
)

func (d InversionDirection) String() string {
	if d == InvertDown {
		return "down"
	}
	return "up"
}

func ParseInversionDirection(s string) (InversionDirection, error) {
	switch s {
	case "up", "":
		return InvertUp, nil
	case "down":
		return InvertDown, nil
	default:
		return 0, fmt.Errorf("unsupported inversion direction: \"%s\"", s)
	}
}

const (
	MinOctave    = -2
	MaxOctave    = 2
	MaxInversion = 2
)

// ChordVoicing holds settings of a chord row that reacts to modifiers.
type ChordVoicing struct {
	Inversion       int
	LeftAddsSeventh bool
	RightAddsNinth  bool
}

// Voicing is a full voicing configuration read on every press.
// Writers are expected to hand over a complete copy (see Tracker.SetVoicing).
type Voicing struct {
	Octave [Rows]int

	Major ChordVoicing
	Minor ChordVoicing

	Counterbass CounterbassInterval
	Direction   InversionDirection
}

func DefaultVoicing() Voicing {
	return Voicing{
		Major:       ChordVoicing{LeftAddsSeventh: true, RightAddsNinth: true},
		Minor:       ChordVoicing{LeftAddsSeventh: true, RightAddsNinth: true},
		Counterbass: PerfectFifth,
		Direction:   InvertUp,
	}
}

// chord returns modifier settings for rows that support them.
func (v *Voicing) chord(row Row) (ChordVoicing, bool) {
	switch row {
	case Major:
		return v.Major, true
	case Minor:
		return v.Minor, true
	}
	return ChordVoicing{}, false
}

func (v *Voicing) Validate() error {
	for row, octave := range v.Octave {
		if octave < MinOctave || octave > MaxOctave {
			return fmt.Errorf("[%s] octave: %d is out of range [%d, %d]", Row(row).Section(), octave, MinOctave, MaxOctave)
		}
	}
	for _, row := range []Row{Major, Minor} {
		cv, _ := v.chord(row)
		if cv.Inversion < 0 || cv.Inversion > MaxInversion {
			return fmt.Errorf("[%s] inversion: %d is out of range [0, %d]", row.Section(), cv.Inversion, MaxInversion)
		}
	}
	if v.Counterbass != MajorThird && v.Counterbass != PerfectFifth {
		return fmt.Errorf("counterbass: unsupported interval %d", int(v.Counterbass))
	}
	if v.Direction != InvertUp && v.Direction != InvertDown {
		return fmt.Errorf("inversion direction: unsupported value %d", int(v.Direction))
	}
	return nil
}
