package keymap

import (
	"fmt"
	"strings"

	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/holoplot/go-evdev"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Entry assigns physical key to grid button.
type Entry struct {
	Code  evdev.EvCode
	Cell  stradella.Cell
	Notes []int // notes declared for the key, informational
}

func (e Entry) Description() string {
	names := make([]string, 0, len(e.Notes))
	for _, n := range e.Notes {
		names = append(names, midi.NoteName(n))
	}
	return fmt.Sprintf("%s (%s)", e.Cell, strings.Join(names, ", "))
}

// Mapper translates key codes into grid coordinates.
type Mapper struct {
	entries map[evdev.EvCode]Entry
}

// defaultColumns are grid columns assigned to ten consecutive keys of a keyboard row
var defaultColumns = [10]int{11, 0, 1, 2, 3, 4, 5, 6, 7, 8}

var defaultRows = []struct {
	row  stradella.Row
	keys [10]rune
}{
	{row: stradella.Bass, keys: [10]rune{'a', 's', 'd', 'f', 'g', 'h', 'j', 'k', 'l', ';'}},
	{row: stradella.Counterbass, keys: [10]rune{'z', 'x', 'c', 'v', 'b', 'n', 'm', ',', '.', '/'}},
	{row: stradella.Major, keys: [10]rune{'q', 'w', 'e', 'r', 't', 'y', 'u', 'i', 'o', 'p'}},
	{row: stradella.Minor, keys: [10]rune{'1', '2', '3', '4', '5', '6', '7', '8', '9', '0'}},
}

// Default returns built-in layout, declared notes follow the given voicing.
func Default(voicing stradella.Voicing) *Mapper {
	m := &Mapper{entries: make(map[evdev.EvCode]Entry)}
	for _, r := range defaultRows {
		for i, char := range r.keys {
			code := charToCode[char]
			col := defaultColumns[i]
			m.entries[code] = Entry{
				Code:  code,
				Cell:  stradella.Cell{Row: r.row, Column: col},
				Notes: stradella.Resolve(r.row, col, &voicing, false, false),
			}
		}
	}
	return m
}

func (m *Mapper) Lookup(code evdev.EvCode) (stradella.Cell, bool) {
	e, ok := m.entries[code]
	return e.Cell, ok
}

func (m *Mapper) Entry(code evdev.EvCode) (Entry, bool) {
	e, ok := m.entries[code]
	return e, ok
}

func (m *Mapper) Set(e Entry) {
	m.entries[e.Code] = e
}

func (m *Mapper) Len() int {
	return len(m.entries)
}

// Entries returns all assignments ordered by row, column and key code.
func (m *Mapper) Entries() []Entry {
	entries := maps.Values(m.entries)
	slices.SortFunc(entries, func(a, b Entry) bool {
		if a.Cell.Key() != b.Cell.Key() {
			return a.Cell.Key() < b.Cell.Key()
		}
		return a.Code < b.Code
	})
	return entries
}

// Keys returns every key assigned to the cell.
func (m *Mapper) Keys(cell stradella.Cell) []evdev.EvCode {
	var codes []evdev.EvCode
	for code, e := range m.entries {
		if e.Cell == cell {
			codes = append(codes, code)
		}
	}
	slices.Sort(codes)
	return codes
}
