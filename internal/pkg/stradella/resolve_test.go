package stradella

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slices"
)

func pitchClasses(notes []int) []int {
	var pcs = make([]int, 0, len(notes))
	for _, n := range notes {
		pcs = append(pcs, ((n%12)+12)%12)
	}
	slices.Sort(pcs)
	return pcs
}

func sum(notes []int) int {
	var s int
	for _, n := range notes {
		s += n
	}
	return s
}

func TestResolveTriads(t *testing.T) {
	v := DefaultVoicing()
	for col := 0; col < Columns; col++ {
		root := Root(col)
		t.Run(ColumnName(col), func(t *testing.T) {
			assert.Equal(t, []int{root + 12, root + 16, root + 19}, Resolve(Major, col, &v, false, false))
			assert.Equal(t, []int{root + 12, root + 15, root + 19}, Resolve(Minor, col, &v, false, false))
			assert.Equal(t, []int{root + 12, root + 16, root + 19, root + 22}, Resolve(Dominant7, col, &v, false, false))
			assert.Equal(t, []int{root + 12, root + 15, root + 18, root + 21}, Resolve(Diminished7, col, &v, false, false))
			assert.Equal(t, []int{root}, Resolve(Bass, col, &v, false, false))
			assert.Equal(t, []int{root + 7}, Resolve(Counterbass, col, &v, false, false))
		})
	}
}

func TestResolveMajorSeventhScenario(t *testing.T) {
	v := DefaultVoicing()
	col, ok := ColumnForRoot(36)
	assert.True(t, ok)
	assert.Equal(t, 2, col)

	assert.Equal(t, []int{48, 52, 55, 58}, Resolve(Major, col, &v, true, false))
}

func TestResolveExtensions(t *testing.T) {
	for _, tc := range []struct {
		name        string
		row         Row
		left, right bool
		seventh     bool
		ninth       bool
		expected    []int
	}{
		{name: "major both enabled, none held", row: Major, seventh: true, ninth: true, expected: []int{48, 52, 55}},
		{name: "major ninth", row: Major, right: true, seventh: true, ninth: true, expected: []int{48, 52, 55, 62}},
		{name: "major both held", row: Major, left: true, right: true, seventh: true, ninth: true, expected: []int{48, 52, 55, 58, 62}},
		{name: "major held but disabled", row: Major, left: true, right: true, expected: []int{48, 52, 55}},
		{name: "minor seventh", row: Minor, left: true, seventh: true, expected: []int{48, 51, 55, 58}},
		{name: "minor ninth", row: Minor, right: true, ninth: true, expected: []int{48, 51, 55, 62}},
		{name: "dominant ignores modifiers", row: Dominant7, left: true, right: true, seventh: true, ninth: true, expected: []int{48, 52, 55, 58}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := DefaultVoicing()
			v.Major = ChordVoicing{LeftAddsSeventh: tc.seventh, RightAddsNinth: tc.ninth}
			v.Minor = ChordVoicing{LeftAddsSeventh: tc.seventh, RightAddsNinth: tc.ninth}
			assert.Equal(t, tc.expected, Resolve(tc.row, 2, &v, tc.left, tc.right))
		})
	}
}

func TestResolveOctaveOffsets(t *testing.T) {
	v := DefaultVoicing()
	v.Octave[Counterbass] = -1
	v.Octave[Bass] = 2
	v.Octave[Major] = 1
	v.Octave[Minor] = -2

	assert.Equal(t, []int{36 + 7 - 12}, Resolve(Counterbass, 2, &v, false, false))
	assert.Equal(t, []int{36 + 24}, Resolve(Bass, 2, &v, false, false))
	assert.Equal(t, []int{60, 64, 67}, Resolve(Major, 2, &v, false, false))
	assert.Equal(t, []int{24, 27, 31}, Resolve(Minor, 2, &v, false, false))
}

func TestResolveDoesNotClamp(t *testing.T) {
	v := DefaultVoicing()
	v.Octave[Major] = 7 // not validated on purpose

	assert.Equal(t, []int{132, 136, 139}, Resolve(Major, 2, &v, false, false))

	v.Octave[Bass] = -4
	assert.Equal(t, []int{36 - 48}, Resolve(Bass, 2, &v, false, false))
}

func TestResolveCounterbassInterval(t *testing.T) {
	v := DefaultVoicing()
	v.Counterbass = MajorThird
	assert.Equal(t, []int{40}, Resolve(Counterbass, 2, &v, false, false))

	v.Counterbass = PerfectFifth
	assert.Equal(t, []int{43}, Resolve(Counterbass, 2, &v, false, false))
}

func TestResolveInversionUp(t *testing.T) {
	v := DefaultVoicing()

	v.Major.Inversion = 1
	assert.Equal(t, []int{52, 55, 60}, Resolve(Major, 2, &v, false, false))

	v.Major.Inversion = 2
	assert.Equal(t, []int{55, 60, 64}, Resolve(Major, 2, &v, false, false))

	// extension is assembled before inversion
	v.Major.Inversion = 1
	assert.Equal(t, []int{52, 55, 58, 60}, Resolve(Major, 2, &v, true, false))
}

func TestResolveInversionDown(t *testing.T) {
	v := DefaultVoicing()
	v.Direction = InvertDown

	v.Minor.Inversion = 1
	assert.Equal(t, []int{43, 48, 51}, Resolve(Minor, 2, &v, false, false))

	v.Minor.Inversion = 2
	assert.Equal(t, []int{39, 43, 48}, Resolve(Minor, 2, &v, false, false))
}

func TestResolveInversionKeepsPitchClasses(t *testing.T) {
	for _, row := range []Row{Major, Minor} {
		for col := 0; col < Columns; col++ {
			for _, mods := range [][2]bool{{false, false}, {true, false}, {false, true}, {true, true}} {
				t.Run(fmt.Sprintf("%s/%s/%v", row, ColumnName(col), mods), func(t *testing.T) {
					v := DefaultVoicing()
					base := Resolve(row, col, &v, mods[0], mods[1])

					for k := 1; k <= MaxInversion; k++ {
						v.Major.Inversion = k
						v.Minor.Inversion = k
						inverted := Resolve(row, col, &v, mods[0], mods[1])

						assert.Len(t, inverted, len(base))
						assert.Equal(t, pitchClasses(base), pitchClasses(inverted))
						assert.Equal(t, sum(base)+12*k, sum(inverted))
						assert.True(t, slices.IsSorted(inverted))
					}
				})
			}
		}
	}
}

func TestResolveInvalidInput(t *testing.T) {
	v := DefaultVoicing()
	assert.Empty(t, Resolve(Row(6), 0, &v, false, false))
	assert.Empty(t, Resolve(Row(-1), 0, &v, false, false))
	assert.Empty(t, Resolve(Major, 12, &v, false, false))
	assert.Empty(t, Resolve(Major, -1, &v, false, false))
}

func TestVoicingValidate(t *testing.T) {
	v := DefaultVoicing()
	assert.Nil(t, v.Validate())

	v.Octave[Bass] = 3
	assert.EqualError(t, v.Validate(), "[bass] octave: 3 is out of range [-2, 2]")

	v = DefaultVoicing()
	v.Minor.Inversion = 3
	assert.EqualError(t, v.Validate(), "[minor] inversion: 3 is out of range [0, 2]")

	v = DefaultVoicing()
	v.Counterbass = 5
	assert.NotNil(t, v.Validate())
}

func TestCell(t *testing.T) {
	c := Cell{Row: Minor, Column: 11}
	assert.Equal(t, 3011, c.Key())
	assert.Equal(t, c, CellFromKey(c.Key()))
	assert.Equal(t, "Eb Minor", c.String())
	assert.True(t, c.Valid())
	assert.False(t, Cell{Row: Minor, Column: 12}.Valid())

	row, ok := RowFromSection("Dom7")
	assert.True(t, ok)
	assert.Equal(t, Dominant7, row)
	_, ok = RowFromSection("seventh")
	assert.False(t, ok)
}

func TestColumnForRoot(t *testing.T) {
	for col := 0; col < Columns; col++ {
		for _, octave := range []int{-12, 0, 12, 24} {
			found, ok := ColumnForRoot(Root(col) + octave)
			assert.True(t, ok)
			assert.Equal(t, col, found)
		}
	}
}
