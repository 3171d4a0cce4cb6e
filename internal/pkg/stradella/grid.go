package stradella

import (
	"fmt"
	"strings"
)

type Row int

const (
	Counterbass Row = iota
	Bass
	Major
	Minor
	Dominant7
	Diminished7

	Rows    = 6
	Columns = 12
)

var rowNames = [Rows]string{"Counterbass", "Bass", "Major", "Minor", "Dom 7", "Dim 7"}

// sectionNames are used by keymap files and profiles
var sectionNames = [Rows]string{"counterbass", "bass", "major", "minor", "dom7", "dim7"}

func (r Row) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Row(%d)", int(r))
	}
	return rowNames[r]
}

func (r Row) Valid() bool {
	return r >= 0 && r < Rows
}

// Section returns lowercase identifier, eg. "dom7".
func (r Row) Section() string {
	if !r.Valid() {
		return ""
	}
	return sectionNames[r]
}

func RowFromSection(s string) (Row, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range sectionNames {
		if name == s {
			return Row(i), true
		}
	}
	return 0, false
}

// IsChord tells whether row sounds an octave above the bass register.
func (r Row) IsChord() bool {
	return r >= Major && r < Rows
}

// columnRoots keeps circle-of-fifths root per column in the octave-2 register.
var columnRoots = [Columns]int{46, 41, 36, 43, 38, 45, 40, 47, 42, 37, 44, 39}

var columnNames = [Columns]string{"Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "Db", "Ab", "Eb"}

// Root returns root midi note of given column or -1 if column is out of range.
func Root(column int) int {
	if column < 0 || column >= Columns {
		return -1
	}
	return columnRoots[column]
}

func ColumnName(column int) string {
	if column < 0 || column >= Columns {
		return "?"
	}
	return columnNames[column]
}

// ColumnForRoot finds column by pitch class of the given note.
func ColumnForRoot(note int) (int, bool) {
	pc := ((note % 12) + 12) % 12
	for col, root := range columnRoots {
		if root%12 == pc {
			return col, true
		}
	}
	return -1, false
}

type Cell struct {
	Row    Row
	Column int
}

func (c Cell) Valid() bool {
	return c.Row.Valid() && c.Column >= 0 && c.Column < Columns
}

// Key returns composite tracking key row*1000+column.
func (c Cell) Key() int {
	return int(c.Row)*1000 + c.Column
}

func CellFromKey(key int) Cell {
	return Cell{Row: Row(key / 1000), Column: key % 1000}
}

// String returns human-readable button description like "C Major".
func (c Cell) String() string {
	return fmt.Sprintf("%s %s", ColumnName(c.Column), c.Row)
}
