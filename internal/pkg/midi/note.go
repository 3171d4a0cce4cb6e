package midi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchToVal = map[string]int{
	"c": 0, "c#": 1, "db": 1, "d": 2, "d#": 3, "eb": 3, "e": 4, "f": 5,
	"f#": 6, "gb": 6, "g": 7, "g#": 8, "ab": 8, "a": 9, "a#": 10, "bb": 10, "b": 11,
}

// Clamp keeps v between lo and hi.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampData fits value into 7-bit midi data byte.
func ClampData(v int) uint8 {
	return uint8(Clamp(v, 0, 127))
}

// NoteToPitch returns pitch-class name, eg. "C#" for 61.
func NoteToPitch(note int) string {
	return pitchNames[((note%12)+12)%12]
}

// NoteToOctave uses convention where 60 is C4.
func NoteToOctave(note int) int {
	if note < 0 {
		return (note-11)/12 - 1
	}
	return note/12 - 1
}

// NoteName returns a compact name like "C2" for 36.
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", NoteToPitch(note), NoteToOctave(note))
}

func noteToString(note byte) string {
	return fmt.Sprintf("%-2s%2d", NoteToPitch(int(note)), NoteToOctave(int(note)))
}

var noteRegex = regexp.MustCompile(`^(?i)([a-g][#b]?)(-?\d+)$`)

// StringToNote parses names produced by NoteName, flats are accepted as well.
func StringToNote(s string) (int, error) {
	match := noteRegex.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("invalid note format: \"%s\"", s)
	}
	pitch, ok := pitchToVal[strings.ToLower(match[1])]
	if !ok {
		return 0, fmt.Errorf("invalid pitch: \"%s\"", match[1])
	}
	octave, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, fmt.Errorf("invalid octave \"%s\": %w", match[2], err)
	}
	return (octave+1)*12 + pitch, nil
}
