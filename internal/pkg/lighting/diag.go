package lighting

import (
	"context"
	"fmt"
	"time"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/realbucksavage/openrgb-go"
)

type Controller struct {
	Index    int
	Name     string
	Keyboard bool
	LEDs     []string
}

// ListControllers describes every controller known to OpenRGB server.
func ListControllers(cfg Config) ([]Controller, error) {
	c, err := openrgb.Connect(cfg.Host, cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to OpenRGB server: %w", err)
	}
	defer c.Close()

	count, err := c.GetControllerCount()
	if err != nil {
		return nil, fmt.Errorf("failed to get controller count: %w", err)
	}

	var controllers = make([]Controller, 0, count)
	for i := 0; i < count; i++ {
		dev, err := c.GetDeviceController(i)
		if err != nil {
			return nil, fmt.Errorf("getting controller information failed (%d/%d): %w", i, count, err)
		}
		names := make([]string, len(dev.LEDs))
		for j, led := range dev.LEDs {
			names[j] = led.Name
		}
		controllers = append(controllers, Controller{
			Index:    i,
			Name:     dev.Name,
			Keyboard: dev.Type == keyboardType,
			LEDs:     names,
		})
	}
	return controllers, nil
}

// Assignments returns grid cells lit by LEDs of given names.
func Assignments(names []string, mapper *keymap.Mapper) map[string]stradella.Cell {
	var cells = make(map[string]stradella.Cell)
	for _, name := range names {
		code, ok := LedNameToKey[name]
		if !ok {
			continue
		}
		if cell, ok := mapper.Lookup(code); ok {
			cells[name] = cell
		}
	}
	return cells
}

// sweep fills colors with a rainbow shifted by offset degrees.
func sweep(colors []openrgb.Color, offset int) {
	for i := range colors {
		hue := float64((offset + i*43) % 360)
		colors[i] = toColor(colorful.Hsv(hue, 1, 1))
	}
}

// Sweep runs a rainbow across controller LEDs for the given time, LED order becomes easy to spot.
func Sweep(ctx context.Context, cfg Config, duration time.Duration) error {
	c, err := openrgb.Connect(cfg.Host, cfg.Port)
	if err != nil {
		return fmt.Errorf("cannot connect to OpenRGB server: %w", err)
	}
	defer c.Close()

	dev, index, err := findController(c, cfg.Controller)
	if err != nil {
		return err
	}

	colors := make([]openrgb.Color, len(dev.Colors))
	deadline := time.After(duration)

	ticker := time.NewTicker(time.Millisecond * 10)
	defer ticker.Stop()

	for counter := 0; ; counter = (counter + 1) % 360 {
		sweep(colors, counter)
		if err := c.UpdateLEDs(index, colors); err != nil {
			return fmt.Errorf("led update failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return nil
		case <-ticker.C:
		}
	}
}
