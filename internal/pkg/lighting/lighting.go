package lighting

import (
	"context"
	"fmt"
	"time"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/gethiox/stradella/internal/pkg/surface"
	"github.com/holoplot/go-evdev"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/realbucksavage/openrgb-go"
)

var log = logger.GetLogger()

const keyboardType = 5 // OpenRGB device type

type Config struct {
	Enabled    bool
	Host       string
	Port       int
	Controller string // empty picks first keyboard
	PanicKey   evdev.EvCode
	UpdateRate time.Duration
}

func DefaultConfig() Config {
	return Config{
		Host:       "localhost",
		Port:       6742,
		PanicKey:   evdev.KEY_ESC,
		UpdateRate: 100 * time.Millisecond,
	}
}

// Source provides keymap and held cells, surface.Surface satisfies it.
type Source interface {
	Mapper() *keymap.Mapper
	State() surface.State
}

var (
	unavailable = openrgb.Color{Red: 8, Green: 8, Blue: 8}
	panicColor  = openrgb.Color{Red: 0xff}
)

func toColor(c colorful.Color) openrgb.Color {
	return openrgb.Color{
		Red:   uint8(c.R * 255),
		Green: uint8(c.G * 255),
		Blue:  uint8(c.B * 255),
	}
}

// rowColor gives every grid row its own hue, held cells are lit brighter and paler.
func rowColor(row stradella.Row, active bool) openrgb.Color {
	h := float64(row) * 360 / stradella.Rows
	if active {
		return toColor(colorful.Hsv(h, 0.25, 1))
	}
	return toColor(colorful.Hsv(h, 1, 0.3))
}

// render fills LED array for current keymap and surface state.
func render(colors []openrgb.Color, indexes map[evdev.EvCode]int, mapper *keymap.Mapper, state surface.State, panicKey evdev.EvCode) {
	set := func(code evdev.EvCode, color openrgb.Color) {
		id, ok := indexes[code]
		if !ok || id >= len(colors) {
			return
		}
		colors[id] = color
	}

	for code := range indexes {
		set(code, unavailable)
	}

	if mapper != nil {
		for _, e := range mapper.Entries() {
			set(e.Code, rowColor(e.Cell.Row, false))
		}
		for _, ac := range state.Active {
			for _, code := range mapper.Keys(ac.Cell) {
				set(code, rowColor(ac.Cell.Row, true))
			}
		}
	}

	set(panicKey, panicColor)
}

func findController(c *openrgb.Client, name string) (openrgb.Device, int, error) {
	count, err := c.GetControllerCount()
	if err != nil {
		return openrgb.Device{}, 0, fmt.Errorf("failed to get controller count: %w", err)
	}

	if count == 0 {
		return openrgb.Device{}, 0, fmt.Errorf("no supported controllers available")
	}

	for i := 0; i < count; i++ {
		dev, err := c.GetDeviceController(i)
		if err != nil {
			return openrgb.Device{}, 0, fmt.Errorf("getting controller information failed (%d/%d): %w", i, count, err)
		}

		if dev.Type != keyboardType {
			continue
		}

		if name == "" || dev.Name == name {
			return dev, i, nil
		}
	}

	return openrgb.Device{}, 0, fmt.Errorf("controller \"%s\" not found", name)
}

// retry calls f every 250ms until it succeeds, timeout passes or context is done.
func retry(ctx context.Context, timeout time.Duration, f func() error) error {
	deadline := time.Now().Add(timeout)
	for {
		err := f()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond * 250):
		}
	}
}

// Run colors keyboard LEDs after grid rows and highlights held cells until context is done.
// Failing to reach OpenRGB server is not fatal, Run just gives up.
func Run(ctx context.Context, cfg Config, src Source) {
	if cfg.UpdateRate <= 0 {
		cfg.UpdateRate = 100 * time.Millisecond
	}

	log.Info(fmt.Sprintf("[OpenRGB] Connecting: %s:%d...", cfg.Host, cfg.Port), logger.Debug)

	var c *openrgb.Client
	err := retry(ctx, time.Second*5, func() error {
		var err error
		c, err = openrgb.Connect(cfg.Host, cfg.Port)
		return err
	})
	if err != nil {
		log.Info(fmt.Sprintf("[OpenRGB] Cannot connect to server: %s", err), logger.Warning)
		return
	}
	defer c.Close()

	log.Info(fmt.Sprintf("[OpenRGB] Connected, finding controller: \"%s\"...", cfg.Controller), logger.Debug)

	var dev openrgb.Device
	var index int
	err = retry(ctx, time.Second*2, func() error {
		var err error
		dev, index, err = findController(c, cfg.Controller)
		return err
	})
	if err != nil {
		log.Info(fmt.Sprintf("[OpenRGB] Cannot find controller: %s", err), logger.Warning)
		return
	}

	log.Info(fmt.Sprintf("[OpenRGB] Controller found: %s, index: %d", dev.Name, index), logger.Info)

	var names = make([]string, len(dev.LEDs))
	for i, led := range dev.LEDs {
		names[i] = led.Name
	}
	indexes := ledIndexes(names)
	ledArray := make([]openrgb.Color, len(dev.Colors))

	ticker := time.NewTicker(cfg.UpdateRate)
	defer ticker.Stop()

	nextFailedLedUpdateReport := time.Now()
	updateFails := 0
root:
	for {
		select {
		case <-ctx.Done():
			break root
		case <-ticker.C:
		}

		render(ledArray, indexes, src.Mapper(), src.State(), cfg.PanicKey)

		err = c.UpdateLEDs(index, ledArray)
		if err != nil {
			updateFails++
			now := time.Now()
			if now.After(nextFailedLedUpdateReport) {
				log.Info(fmt.Sprintf("[OpenRGB] Led update fails %d times, last err: %s", updateFails, err), logger.Debug)
				updateFails = 0
				nextFailedLedUpdateReport = now.Add(time.Second * 2)
			}
		}
	}

	for i := range ledArray {
		ledArray[i] = panicColor
	}
	_ = c.UpdateLEDs(index, ledArray)
	log.Info("[OpenRGB] LED update loop stopped", logger.Debug)
}
