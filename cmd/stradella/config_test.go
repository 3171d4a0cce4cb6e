package main

import (
	"image"
	"io/fs"
	"testing"
	"time"

	"github.com/d2r2/go-hd44780"
	"github.com/gethiox/stradella/internal/pkg/expression"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

func TestParseFactoryConfig(t *testing.T) {
	data, err := fs.ReadFile(templateConfig, configFile)
	assert.Equal(t, nil, err)

	cfg, err := ParseConfig(data)
	assert.Equal(t, nil, err)

	assert.Equal(t, time.Second/60, cfg.Stradella.TickRate)
	assert.Equal(t, time.Millisecond, cfg.Stradella.RelayRate)
	assert.Equal(t, time.Second, cfg.Stradella.DiscoveryRate)
	assert.Equal(t, true, cfg.Stradella.Grab)
	assert.Equal(t, 1000, cfg.Stradella.LogBufferSize)

	assert.Equal(t, 0, cfg.Surface.Velocity)
	assert.Equal(t, 1, cfg.Surface.VelocityFloor)
	assert.Equal(t, evdev.EvCode(evdev.KEY_ESC), cfg.Surface.PanicKey)
	assert.Equal(t, evdev.EvCode(evdev.BTN_LEFT), cfg.Surface.LeftModifier)
	assert.Equal(t, evdev.EvCode(evdev.BTN_RIGHT), cfg.Surface.RightModifier)

	assert.Equal(t, OutputVirtual, cfg.MIDI.Output)
	assert.Equal(t, uint8(0), cfg.MIDI.Channel)
	assert.Equal(t, 4096, cfg.MIDI.QueueSize)
	assert.Equal(t, midi.DropOldest, cfg.MIDI.Overflow)
	assert.Equal(t, "", cfg.MIDI.Record)

	assert.Equal(t, expression.Linear, cfg.Expression.Curve)
	assert.Equal(t, 100*time.Millisecond, cfg.Expression.DecayDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Expression.DecayDuration)
	assert.Equal(t, cfg.Stradella.TickRate, cfg.Expression.TickRate)
	assert.Equal(t, image.Rect(0, 0, 1920, 1080), cfg.Pointer)

	assert.Equal(t, "stradella-config/profiles/default.yaml", cfg.Voicing.Profile)
	assert.Equal(t, "stradella-config/keymap.txt", cfg.Voicing.Keymap)
	assert.Equal(t, true, cfg.Voicing.Watch)

	assert.Equal(t, false, cfg.Screen.Enabled)
	assert.Equal(t, hd44780.LCD_20x4, cfg.Screen.LcdType)
	assert.Equal(t, uint8(0x27), cfg.Screen.Address)
	assert.Equal(t, time.Second, cfg.Screen.UpdateRate)
	assert.Equal(t, false, cfg.Screen.HaveExitMessage())

	assert.Equal(t, false, cfg.OpenRGB.Enabled)
	assert.Equal(t, 6742, cfg.OpenRGB.Port)
	assert.Equal(t, evdev.EvCode(evdev.KEY_ESC), cfg.OpenRGB.PanicKey)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
[stradella]
velocity = 90
panic_key = KEY_F12
[midi]
output = rtmidi
port = FluidSynth
channel = 10
overflow = drop_newest
[expression]
curve = exponential
[screen]
type = 16x2
exit_message1 = bye
`))
	assert.Equal(t, nil, err)

	assert.Equal(t, 90, cfg.Surface.Velocity)
	assert.Equal(t, evdev.EvCode(evdev.KEY_F12), cfg.Surface.PanicKey)
	assert.Equal(t, evdev.EvCode(evdev.KEY_F12), cfg.OpenRGB.PanicKey)
	assert.Equal(t, OutputRtmidi, cfg.MIDI.Output)
	assert.Equal(t, "FluidSynth", cfg.MIDI.Port)
	assert.Equal(t, uint8(9), cfg.MIDI.Channel)
	assert.Equal(t, uint8(9), cfg.Expression.Channel)
	assert.Equal(t, midi.DropNewest, cfg.MIDI.Overflow)
	assert.Equal(t, expression.Exponential, cfg.Expression.Curve)
	assert.Equal(t, hd44780.LCD_16x2, cfg.Screen.LcdType)
	assert.Equal(t, true, cfg.Screen.HaveExitMessage())
}

func TestParseConfigErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		config   string
		expected string
	}{
		{
			name:     "zero rate",
			config:   "[stradella]\ntick_rate = 0",
			expected: "[stradella] tick_rate: 0 is not a positive number",
		},
		{
			name:     "velocity out of range",
			config:   "[stradella]\nvelocity = 200",
			expected: "[stradella] velocity: 200 is out of range [0, 127]",
		},
		{
			name:     "zero velocity floor",
			config:   "[stradella]\nvelocity_floor = 0",
			expected: "[stradella] velocity_floor: 0 is out of range [1, 127]",
		},
		{
			name:     "unknown output",
			config:   "[midi]\noutput = jack",
			expected: "[midi] output: unsupported output \"jack\"",
		},
		{
			name:     "channel out of range",
			config:   "[midi]\nchannel = 17",
			expected: "[midi] channel: 17 is out of range [1, 16]",
		},
		{
			name:     "negative queue",
			config:   "[midi]\nqueue_size = -1",
			expected: "[midi] queue_size: -1 is negative",
		},
		{
			name:     "i2c address",
			config:   "[screen]\naddress = 0x80",
			expected: "[screen] address: 0x80 is not a valid i2c address",
		},
		{
			name:     "screen update rate",
			config:   "[screen]\nupdate_rate = 0",
			expected: "[screen] update_rate: 0 is not a positive number",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.config))
			if assert.NotEqual(t, nil, err) {
				assert.Equal(t, tc.expected, err.Error())
			}
		})
	}
}

func TestFactoryProfiles(t *testing.T) {
	v, name, err := readVoicing(profileDir + "/default.yaml")
	assert.Equal(t, nil, err)
	assert.NotEqual(t, "", name)
	assert.Equal(t, stradella.PerfectFifth, v.Counterbass)

	v, _, err = readVoicing(profileDir + "/classic.toml")
	assert.Equal(t, nil, err)
	assert.Equal(t, stradella.MajorThird, v.Counterbass)
}

func TestLoadVoicingFallback(t *testing.T) {
	fallback := stradella.DefaultVoicing()
	fallback.Octave[stradella.Bass] = -1

	v := loadVoicing(profileDir+"/missing.yaml", fallback, "previous")
	assert.Equal(t, fallback, v)
}
