package keymap

import (
	"os"
	"strings"
	"testing"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func TestKeyCode(t *testing.T) {
	for _, tc := range []struct {
		token    string
		expected evdev.EvCode
	}{
		{token: "a", expected: evdev.KEY_A},
		{token: "A", expected: evdev.KEY_A},
		{token: ";", expected: evdev.KEY_SEMICOLON},
		{token: "/", expected: evdev.KEY_SLASH},
		{token: "0", expected: evdev.KEY_0},
		{token: "KEY_ESC", expected: evdev.KEY_ESC},
		{token: "key_esc", expected: evdev.KEY_ESC},
		{token: "BTN_LEFT", expected: evdev.BTN_LEFT},
		{token: "x1e", expected: evdev.KEY_A},
	} {
		t.Run(tc.token, func(t *testing.T) {
			code, err := KeyCode(tc.token)
			assert.Equal(t, nil, err)
			assert.Equal(t, tc.expected, code)
		})
	}
}

func TestKeyCodeFail(t *testing.T) {
	for _, token := range []string{"", "é", "KEY_NOPE", "xzz"} {
		t.Run(token, func(t *testing.T) {
			_, err := KeyCode(token)
			assert.NotNil(t, err)
		})
	}
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "a", KeyName(evdev.KEY_A))
	assert.Equal(t, ";", KeyName(evdev.KEY_SEMICOLON))
	assert.Equal(t, "space", KeyName(evdev.KEY_SPACE))
	assert.Equal(t, "KEY_ESC", KeyName(evdev.KEY_ESC))
	assert.Equal(t, "BTN_LEFT", KeyName(evdev.BTN_LEFT))
}

func TestDefaultLayout(t *testing.T) {
	m := Default(stradella.DefaultVoicing())
	assert.Equal(t, 40, m.Len())

	for _, tc := range []struct {
		key      evdev.EvCode
		expected stradella.Cell
		notes    []int
	}{
		{key: evdev.KEY_A, expected: stradella.Cell{Row: stradella.Bass, Column: 11}, notes: []int{39}},
		{key: evdev.KEY_F, expected: stradella.Cell{Row: stradella.Bass, Column: 2}, notes: []int{36}},
		{key: evdev.KEY_V, expected: stradella.Cell{Row: stradella.Counterbass, Column: 2}, notes: []int{43}},
		{key: evdev.KEY_R, expected: stradella.Cell{Row: stradella.Major, Column: 2}, notes: []int{48, 52, 55}},
		{key: evdev.KEY_4, expected: stradella.Cell{Row: stradella.Minor, Column: 2}, notes: []int{48, 51, 55}},
		{key: evdev.KEY_SLASH, expected: stradella.Cell{Row: stradella.Counterbass, Column: 8}},
	} {
		t.Run(KeyName(tc.key), func(t *testing.T) {
			cell, ok := m.Lookup(tc.key)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, cell)
			if tc.notes != nil {
				entry, _ := m.Entry(tc.key)
				assert.Equal(t, tc.notes, entry.Notes)
			}
		})
	}

	_, ok := m.Lookup(evdev.KEY_ESC)
	assert.False(t, ok)
}

func TestEntriesOrder(t *testing.T) {
	entries := Default(stradella.DefaultVoicing()).Entries()
	require.Len(t, entries, 40)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Cell.Key(), entries[i].Cell.Key())
	}
	assert.Equal(t, stradella.Cell{Row: stradella.Counterbass, Column: 0}, entries[0].Cell)
}

func TestEntryDescription(t *testing.T) {
	m := Default(stradella.DefaultVoicing())
	entry, ok := m.Entry(evdev.KEY_R)
	require.True(t, ok)
	assert.Equal(t, "C Major (C3, E3, G3)", entry.Description())
}

func TestParse(t *testing.T) {
	const text = `
# custom layout
[bass]
a = 37          # Db
KEY_SPACE=C2

[counterbass]
z=43

[major]
q=C3,E3,G3
[dom7]
]=50,54,57,60
`
	m, skipped, err := Parse(strings.NewReader(text), stradella.DefaultVoicing())
	assert.Equal(t, nil, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 42, m.Len()) // space and "]" are new keys

	for _, tc := range []struct {
		key      evdev.EvCode
		expected stradella.Cell
	}{
		{key: evdev.KEY_A, expected: stradella.Cell{Row: stradella.Bass, Column: 9}},
		{key: evdev.KEY_SPACE, expected: stradella.Cell{Row: stradella.Bass, Column: 2}},
		{key: evdev.KEY_Z, expected: stradella.Cell{Row: stradella.Counterbass, Column: 2}},
		{key: evdev.KEY_Q, expected: stradella.Cell{Row: stradella.Major, Column: 2}},
		{key: evdev.KEY_RIGHTBRACE, expected: stradella.Cell{Row: stradella.Dominant7, Column: 4}},
		{key: evdev.KEY_S, expected: stradella.Cell{Row: stradella.Bass, Column: 0}}, // untouched default
	} {
		t.Run(KeyName(tc.key), func(t *testing.T) {
			cell, ok := m.Lookup(tc.key)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, cell)
		})
	}
}

func TestParseCounterbassThird(t *testing.T) {
	v := stradella.DefaultVoicing()
	v.Counterbass = stradella.MajorThird

	m, skipped, err := Parse(strings.NewReader("[counterbass]\nz=40\n"), v)
	assert.Equal(t, nil, err)
	assert.Empty(t, skipped)

	cell, ok := m.Lookup(evdev.KEY_Z)
	assert.True(t, ok)
	assert.Equal(t, stradella.Cell{Row: stradella.Counterbass, Column: 2}, cell)
}

func TestParseBeforeFirstSection(t *testing.T) {
	m, skipped, err := Parse(strings.NewReader("KEY_SPACE=36\n[major]\nKEY_ENTER=48,52,55\n"), stradella.DefaultVoicing())
	assert.Equal(t, nil, err)
	assert.Empty(t, skipped)

	for _, tc := range []struct {
		code     evdev.EvCode
		expected stradella.Cell
	}{
		{code: evdev.KEY_SPACE, expected: stradella.Cell{Row: stradella.Bass, Column: 2}},
		{code: evdev.KEY_ENTER, expected: stradella.Cell{Row: stradella.Major, Column: 2}},
	} {
		cell, ok := m.Lookup(tc.code)
		assert.True(t, ok)
		assert.Equal(t, tc.expected, cell)
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	const text = `a=40
[bass]
a 40
a=
a=200
KEY_NOPE=40
a=foo
[bass
s=200,40
[keys]
d=50
`
	m, skipped, err := Parse(strings.NewReader(text), stradella.DefaultVoicing())
	assert.Equal(t, nil, err)

	var lines []int
	for _, s := range skipped {
		lines = append(lines, s.Line)
		assert.NotEmpty(t, s.Reason)
		assert.Contains(t, s.Error(), s.Text)
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 10}, lines)

	// table stays complete
	assert.Equal(t, 40, m.Len())

	// line 1 belongs to [bass], later broken "a" lines leave it alone
	cell, _ := m.Lookup(evdev.KEY_A)
	assert.Equal(t, stradella.Cell{Row: stradella.Bass, Column: 6}, cell)

	// out of range note is dropped, the rest of the line is used
	cell, _ = m.Lookup(evdev.KEY_S)
	assert.Equal(t, stradella.Cell{Row: stradella.Bass, Column: 6}, cell)

	// assignments of unknown section are ignored
	cell, _ = m.Lookup(evdev.KEY_D)
	assert.Equal(t, stradella.Cell{Row: stradella.Bass, Column: 1}, cell)
}

func TestKeysForCell(t *testing.T) {
	m, _, err := Parse(strings.NewReader("[bass]\nKEY_SPACE=36\n"), stradella.DefaultVoicing())
	assert.Equal(t, nil, err)

	keys := m.Keys(stradella.Cell{Row: stradella.Bass, Column: 2})
	assert.Equal(t, []evdev.EvCode{evdev.KEY_F, evdev.KEY_SPACE}, keys)
}

func TestLoadMissingFile(t *testing.T) {
	m, _, err := Load("/nonexistent/keymap.txt", stradella.DefaultVoicing())
	assert.NotNil(t, err)
	assert.Equal(t, 40, m.Len())
}

func TestParseSharpNotesAndBraceKeys(t *testing.T) {
	const text = `[dom7]
[=D3,F#3,A3,C4 # D7
`
	m, skipped, err := Parse(strings.NewReader(text), stradella.DefaultVoicing())
	assert.Equal(t, nil, err)
	assert.Empty(t, skipped)

	entry, ok := m.Entry(evdev.KEY_LEFTBRACE)
	require.True(t, ok)
	assert.Equal(t, stradella.Cell{Row: stradella.Dominant7, Column: 4}, entry.Cell)
	assert.Equal(t, []int{50, 54, 57, 60}, entry.Notes)
}

func TestLoadFactoryKeymap(t *testing.T) {
	m, skipped, err := Load("../../../cmd/stradella/stradella-config/keymap.txt", stradella.DefaultVoicing())
	assert.Equal(t, nil, err)
	assert.Empty(t, skipped)
	assert.Equal(t, 44, m.Len())

	for _, tc := range []struct {
		key      evdev.EvCode
		expected stradella.Cell
	}{
		{key: evdev.KEY_LEFTBRACE, expected: stradella.Cell{Row: stradella.Dominant7, Column: 4}},
		{key: evdev.KEY_RIGHTBRACE, expected: stradella.Cell{Row: stradella.Dominant7, Column: 5}},
		{key: evdev.KEY_APOSTROPHE, expected: stradella.Cell{Row: stradella.Diminished7, Column: 4}},
		{key: evdev.KEY_BACKSLASH, expected: stradella.Cell{Row: stradella.Diminished7, Column: 5}},
	} {
		t.Run(KeyName(tc.key), func(t *testing.T) {
			cell, ok := m.Lookup(tc.key)
			assert.True(t, ok)
			assert.Equal(t, tc.expected, cell)
		})
	}
}
