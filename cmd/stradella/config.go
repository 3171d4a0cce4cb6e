package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/gethiox/stradella/internal/pkg/display"
	"github.com/gethiox/stradella/internal/pkg/expression"
	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/lighting"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/surface"
	"github.com/go-ini/ini"
	"github.com/holoplot/go-evdev"
)

type Stradella struct {
	TickRate      time.Duration
	RelayRate     time.Duration
	DiscoveryRate time.Duration
	Grab          bool
	LogViewRate   time.Duration
	LogBufferSize int
}

type MIDI struct {
	Output    string
	Port      string
	Device    string
	Channel   uint8 // 0-15
	QueueSize int
	Overflow  midi.OverflowPolicy
	Record    string
}

type Voicing struct {
	Profile string
	Keymap  string
	Watch   bool
}

type Config struct {
	Stradella  Stradella
	Surface    surface.Config
	MIDI       MIDI
	Expression expression.Config
	Pointer    image.Rectangle
	Voicing    Voicing
	Screen     display.ScreenConfig
	OpenRGB    lighting.Config
}

const (
	OutputRtmidi  = "rtmidi"
	OutputVirtual = "virtual"
	OutputRaw     = "raw"
	OutputNone    = "none"
)

// rate converts frequency key into period.
func rate(sec *ini.Section, key string, def int) (time.Duration, error) {
	v := sec.Key(key).MustInt(def)
	if v <= 0 {
		return 0, fmt.Errorf("[%s] %s: %d is not a positive number", sec.Name(), key, v)
	}
	return time.Second / time.Duration(v), nil
}

func keyCode(sec *ini.Section, key string, def evdev.EvCode) (evdev.EvCode, error) {
	s := sec.Key(key).MustString("")
	if s == "" {
		return def, nil
	}
	code, err := keymap.KeyCode(s)
	if err != nil {
		return 0, fmt.Errorf("[%s] %s: %w", sec.Name(), key, err)
	}
	return code, nil
}

func ParseConfig(data []byte) (Config, error) {
	file, err := ini.Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	var c = Config{
		Surface:    surface.DefaultConfig(),
		Expression: expression.DefaultConfig(),
		OpenRGB:    lighting.DefaultConfig(),
	}

	// [stradella]
	sec := file.Section("stradella")
	if c.Stradella.TickRate, err = rate(sec, "tick_rate", 60); err != nil {
		return Config{}, err
	}
	if c.Stradella.RelayRate, err = rate(sec, "relay_rate", 1000); err != nil {
		return Config{}, err
	}
	if c.Stradella.DiscoveryRate, err = rate(sec, "discovery_rate", 1); err != nil {
		return Config{}, err
	}
	if c.Stradella.LogViewRate, err = rate(sec, "log_view_rate", 30); err != nil {
		return Config{}, err
	}
	c.Stradella.Grab = sec.Key("grab").MustBool(true)
	c.Stradella.LogBufferSize = sec.Key("log_buffer_size").MustInt(1000)
	if c.Stradella.LogBufferSize < 1 {
		return Config{}, fmt.Errorf("[stradella] log_buffer_size: %d is not a positive number", c.Stradella.LogBufferSize)
	}

	c.Surface.Velocity = sec.Key("velocity").MustInt(0)
	c.Surface.VelocityFloor = sec.Key("velocity_floor").MustInt(1)
	if c.Surface.Velocity < 0 || c.Surface.Velocity > 127 {
		return Config{}, fmt.Errorf("[stradella] velocity: %d is out of range [0, 127]", c.Surface.Velocity)
	}
	if c.Surface.VelocityFloor < 1 || c.Surface.VelocityFloor > 127 {
		return Config{}, fmt.Errorf("[stradella] velocity_floor: %d is out of range [1, 127]", c.Surface.VelocityFloor)
	}
	if c.Surface.PanicKey, err = keyCode(sec, "panic_key", evdev.KEY_ESC); err != nil {
		return Config{}, err
	}
	if c.Surface.LeftModifier, err = keyCode(sec, "left_modifier", evdev.BTN_LEFT); err != nil {
		return Config{}, err
	}
	if c.Surface.RightModifier, err = keyCode(sec, "right_modifier", evdev.BTN_RIGHT); err != nil {
		return Config{}, err
	}

	// [midi]
	sec = file.Section("midi")
	c.MIDI.Output = sec.Key("output").MustString(OutputVirtual)
	switch c.MIDI.Output {
	case OutputRtmidi, OutputVirtual, OutputRaw, OutputNone:
	default:
		return Config{}, fmt.Errorf("[midi] output: unsupported output \"%s\"", c.MIDI.Output)
	}
	c.MIDI.Port = sec.Key("port").MustString("")
	c.MIDI.Device = sec.Key("device").MustString("")
	c.MIDI.Record = sec.Key("record").MustString("")
	channel := sec.Key("channel").MustInt(1)
	if channel < 1 || channel > 16 {
		return Config{}, fmt.Errorf("[midi] channel: %d is out of range [1, 16]", channel)
	}
	c.MIDI.Channel = uint8(channel - 1)
	c.MIDI.QueueSize = sec.Key("queue_size").MustInt(4096)
	if c.MIDI.QueueSize < 0 {
		return Config{}, fmt.Errorf("[midi] queue_size: %d is negative", c.MIDI.QueueSize)
	}
	c.MIDI.Overflow, err = midi.ParseOverflowPolicy(sec.Key("overflow").MustString("drop_oldest"))
	if err != nil {
		return Config{}, fmt.Errorf("[midi] overflow: %w", err)
	}

	// [expression]
	sec = file.Section("expression")
	c.Expression.Channel = c.MIDI.Channel
	c.Expression.TickRate = c.Stradella.TickRate
	c.Expression.Modulation = sec.Key("modulation").MustBool(true)
	c.Expression.Expression = sec.Key("expression").MustBool(true)
	c.Expression.Retrigger = sec.Key("retrigger").MustBool(true)
	c.Expression.Curve, err = expression.ParseCurve(sec.Key("curve").MustString("linear"))
	if err != nil {
		return Config{}, fmt.Errorf("[expression] curve: %w", err)
	}
	delay, duration := sec.Key("decay_delay").MustInt(100), sec.Key("decay_duration").MustInt(200)
	if delay < 0 || duration < 0 {
		return Config{}, fmt.Errorf("[expression] decay_delay, decay_duration: negative time")
	}
	c.Expression.DecayDelay = time.Duration(delay) * time.Millisecond
	c.Expression.DecayDuration = time.Duration(duration) * time.Millisecond
	width, height := sec.Key("screen_width").MustInt(1920), sec.Key("screen_height").MustInt(1080)
	if width < 1 || height < 1 {
		return Config{}, fmt.Errorf("[expression] screen_width, screen_height: %dx%d is not a valid size", width, height)
	}
	c.Pointer = image.Rect(0, 0, width, height)

	// [voicing]
	sec = file.Section("voicing")
	c.Voicing.Profile = sec.Key("profile").MustString(configDir + "/profiles/default.yaml")
	c.Voicing.Keymap = sec.Key("keymap").MustString(configDir + "/keymap.txt")
	c.Voicing.Watch = sec.Key("watch").MustBool(true)

	// [screen]
	sec = file.Section("screen")
	c.Screen.Enabled = sec.Key("enabled").MustBool(false)
	c.Screen.LcdType, err = display.ParseLcdType(sec.Key("type").MustString("20x4"))
	if err != nil {
		return Config{}, fmt.Errorf("[screen] type: %w", err)
	}
	c.Screen.Bus = sec.Key("bus").MustInt(1)
	address := sec.Key("address").MustInt(0x27)
	if address < 0 || address > 0x7f {
		return Config{}, fmt.Errorf("[screen] address: 0x%x is not a valid i2c address", address)
	}
	c.Screen.Address = uint8(address)
	updateRate := sec.Key("update_rate").MustInt(1)
	if updateRate < 1 {
		return Config{}, fmt.Errorf("[screen] update_rate: %d is not a positive number", updateRate)
	}
	c.Screen.UpdateRate = time.Duration(updateRate) * time.Second
	for i := range c.Screen.ExitMessage {
		c.Screen.ExitMessage[i] = sec.Key(fmt.Sprintf("exit_message%d", i+1)).String()
	}

	// [openrgb]
	sec = file.Section("openrgb")
	c.OpenRGB.Enabled = sec.Key("enabled").MustBool(false)
	c.OpenRGB.Host = sec.Key("host").MustString("localhost")
	c.OpenRGB.Port = sec.Key("port").MustInt(6742)
	c.OpenRGB.Controller = sec.Key("controller").MustString("")
	c.OpenRGB.PanicKey = c.Surface.PanicKey

	return c, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

//go:embed stradella-config/stradella.config
//go:embed stradella-config/keymap.txt
//go:embed stradella-config/profiles/*
var templateConfig embed.FS

const (
	configDir  = "stradella-config"
	configFile = configDir + "/stradella.config"
	profileDir = configDir + "/profiles"
)

func writeTemplate(path string, flags int) error {
	data, err := fs.ReadFile(templateConfig, path)
	if err != nil {
		return fmt.Errorf("cannot read \"%s\" template file: %w", path, err)
	}

	dst, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		return fmt.Errorf("cannot open \"%s\" file: %w", path, err)
	}
	defer dst.Close()

	_, err = dst.Write(data)
	if err != nil {
		return fmt.Errorf("cannot write data into \"%s\" file: %w", path, err)
	}
	return nil
}

// createConfigDirectoryIfNeeded creates config directory if necessary.
// It also updates factory profiles, stradella.config and keymap.txt stay intact.
func createConfigDirectoryIfNeeded() error {
	cdir, err := os.OpenFile(configDir, os.O_RDONLY, 0)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot open config directory: %w", err)
		}
		log.Info("config not exist, generating tree...", logger.Info)

		err = fs.WalkDir(templateConfig, configDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				err := os.Mkdir(path, 0o777)
				if err != nil {
					return fmt.Errorf("cannot create \"%s\" directory: %w", path, err)
				}
				return nil
			}

			err = writeTemplate(path, os.O_CREATE|os.O_WRONLY)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("Created \"%s\" file", path), logger.Debug)
			return nil
		})
		if err != nil {
			return fmt.Errorf("config generation failed: %w", err)
		}
		log.Info("config generation done", logger.Info)
		return nil
	}
	cdir.Close()

	// update factory profiles
	err = fs.WalkDir(templateConfig, profileDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			err := os.MkdirAll(path, 0o777)
			if err != nil {
				return fmt.Errorf("cannot create \"%s\" directory: %w", path, err)
			}
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("cannot open \"%s\" file: %w", path, err)
			}
			log.Info(fmt.Sprintf("Creating new factory profile: \"%s\"", path), logger.Debug)
			return writeTemplate(path, os.O_CREATE|os.O_WRONLY)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return fmt.Errorf("cannot read \"%s\" file: %w", path, err)
		}

		newData, err := fs.ReadFile(templateConfig, path)
		if err != nil {
			return fmt.Errorf("cannot open \"%s\" file template: %w", path, err)
		}

		if bytes.Equal(data, newData) {
			log.Info(fmt.Sprintf("File \"%s\" not changed", path), logger.Debug)
			return nil
		}
		log.Info(fmt.Sprintf("File \"%s\" changed, replacing data...", path), logger.Debug)
		return writeTemplate(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	})
	if err != nil {
		return fmt.Errorf("update factory profiles failed: %w", err)
	}
	return nil
}
