package stradella

import (
	"golang.org/x/exp/slices"
)

var chordIntervals = map[Row][]int{
	Major:       {0, 4, 7},
	Minor:       {0, 3, 7},
	Dominant7:   {0, 4, 7, 10},
	Diminished7: {0, 3, 6, 9},
}

const (
	seventh = 10
	ninth   = 14
)

// Resolve maps a button press into an ordered list of midi notes.
// Notes are logical values, clamping to the midi range happens when messages are built.
// Rows outside of the grid resolve to nil.
func Resolve(row Row, column int, v *Voicing, left, right bool) []int {
	root := Root(column)
	if root < 0 || !row.Valid() {
		return nil
	}

	octave := v.Octave[row] * 12

	switch row {
	case Counterbass:
		return []int{root + int(v.Counterbass) + octave}
	case Bass:
		return []int{root + octave}
	}

	base := root + 12 + octave
	intervals := chordIntervals[row]

	var notes = make([]int, 0, len(intervals)+2)
	for _, interval := range intervals {
		notes = append(notes, base+interval)
	}

	cv, ok := v.chord(row)
	if !ok {
		return notes
	}

	if left && cv.LeftAddsSeventh {
		notes = append(notes, base+seventh)
	}
	if right && cv.RightAddsNinth {
		notes = append(notes, base+ninth)
	}

	return invert(notes, cv.Inversion, v.Direction)
}

// invert applies inversion k times, notes have to be sorted ascending.
func invert(notes []int, k int, direction InversionDirection) []int {
	if len(notes) < 2 {
		return notes
	}
	for i := 0; i < k; i++ {
		switch direction {
		case InvertDown:
			notes[len(notes)-1] -= 12
		default:
			notes[0] += 12
		}
		slices.Sort(notes)
	}
	return notes
}
