package lighting

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/gethiox/stradella/internal/pkg/surface"
	"github.com/holoplot/go-evdev"
	"github.com/realbucksavage/openrgb-go"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}

func TestLedNameToKey(t *testing.T) {
	assert.Equal(t, len(KeyToLedName), len(LedNameToKey))
	assert.Equal(t, evdev.EvCode(evdev.KEY_SEMICOLON), LedNameToKey["Key: ;"])
}

func TestLedIndexes(t *testing.T) {
	indexes := ledIndexes([]string{"Key: A", "RGB Strip 1", "Key: Z", "Key: Escape"})
	assert.Equal(t, map[evdev.EvCode]int{
		evdev.KEY_A:   0,
		evdev.KEY_Z:   2,
		evdev.KEY_ESC: 3,
	}, indexes)
}

func TestRowColors(t *testing.T) {
	var seen = map[openrgb.Color]bool{}
	for row := stradella.Row(0); row < stradella.Rows; row++ {
		idle, active := rowColor(row, false), rowColor(row, true)
		assert.NotEqual(t, idle, active)
		assert.False(t, seen[idle], row.String())
		seen[idle] = true
	}
	assert.Equal(t, openrgb.Color{Red: 255, Green: 191, Blue: 191}, rowColor(stradella.Counterbass, true))
}

func TestRender(t *testing.T) {
	mapper := keymap.Default(stradella.DefaultVoicing())
	cell, ok := mapper.Lookup(evdev.KEY_A)
	assert.True(t, ok)

	names := []string{"Key: A", "Key: S", "Key: Z", "Key: Escape", "Key: Tab", "RGB Strip 1"}
	colors := make([]openrgb.Color, len(names))
	state := surface.State{Active: []stradella.ActiveCell{{Cell: cell, Holders: 1}}}

	render(colors, ledIndexes(names), mapper, state, evdev.KEY_ESC)

	assert.Equal(t, rowColor(stradella.Bass, true), colors[0])
	assert.Equal(t, rowColor(stradella.Bass, false), colors[1])
	assert.Equal(t, rowColor(stradella.Counterbass, false), colors[2])
	assert.Equal(t, panicColor, colors[3])
	assert.Equal(t, unavailable, colors[4])
	assert.Equal(t, openrgb.Color{}, colors[5])
}

func TestRetry(t *testing.T) {
	var calls int
	err := retry(context.Background(), time.Second, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retry(ctx, time.Hour, func() error { return errors.New("never") })
	assert.Equal(t, context.Canceled, err)
}

func TestAssignments(t *testing.T) {
	mapper := keymap.Default(stradella.DefaultVoicing())

	cells := Assignments([]string{"Key: A", "Key: Tab", "RGB Strip 1", "Key: Q"}, mapper)
	assert.Equal(t, map[string]stradella.Cell{
		"Key: A": {Row: stradella.Bass, Column: 11},
		"Key: Q": {Row: stradella.Major, Column: 11},
	}, cells)
}

func TestSweep(t *testing.T) {
	colors := make([]openrgb.Color, 4)

	sweep(colors, 0)
	assert.Equal(t, openrgb.Color{Red: 255}, colors[0])
	for _, c := range colors[1:] {
		assert.NotEqual(t, openrgb.Color{}, c)
		assert.NotEqual(t, colors[0], c)
	}

	sweep(colors, 120)
	assert.Equal(t, openrgb.Color{Green: 255}, colors[0])
}
