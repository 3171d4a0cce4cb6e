package main

import (
	"strings"
	"testing"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/lighting"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/stretchr/testify/assert"
)

func TestGridTable(t *testing.T) {
	v := stradella.DefaultVoicing()

	lines := gridTable(v, false, false)
	assert.Equal(t, stradella.Rows*(stradella.Columns+1), len(lines))

	for _, tc := range []struct {
		index    int
		expected string
	}{
		{index: 0, expected: "Counterbass:"},
		{index: 3, expected: "  C   G2"},
		{index: 13, expected: "Bass:"},
		{index: 16, expected: "  C   C2"},
		{index: 29, expected: "  C   C3 E3 G3"},
		{index: 42, expected: "  C   C3 D#3 G3"},
	} {
		assert.Equal(t, tc.expected, lines[tc.index])
	}

	lines = gridTable(v, true, true)
	assert.Equal(t, "  C   C3 E3 G3 A#3 D4", lines[29])
	assert.Equal(t, "  C   C2", lines[16])
}

func TestKeymapTable(t *testing.T) {
	mapper := keymap.Default(stradella.DefaultVoicing())

	lines := keymapTable(mapper, nil)
	assert.Equal(t, mapper.Len(), len(lines))
	assert.Equal(t, "x"+strings.Repeat(" ", 15)+" Bb Counterbass (F3)", lines[0])

	skipped := []keymap.LineError{{Line: 3, Text: "q=", Reason: "missing notes"}}
	lines = keymapTable(mapper, skipped)
	assert.Equal(t, mapper.Len()+2, len(lines))
	assert.Equal(t, "1 lines skipped:", lines[len(lines)-2])
	assert.Equal(t, "  line 3 \"q=\": missing notes", lines[len(lines)-1])
}

func TestControllerTable(t *testing.T) {
	mapper := keymap.Default(stradella.DefaultVoicing())

	lines := controllerTable([]lighting.Controller{
		{Index: 0, Name: "Strip", LEDs: []string{"LED 1", "LED 2"}},
		{Index: 1, Name: "Keyboard", Keyboard: true, LEDs: []string{"Key: Escape", "Key: A", "Key: Z"}},
	}, mapper)

	assert.Equal(t, []string{
		"0: \"Strip\" (other, 2 leds)",
		"1: \"Keyboard\" (keyboard, 3 leds)",
		"  Key: A           Eb Bass",
		"  Key: Z           Eb Counterbass",
	}, lines)
}
