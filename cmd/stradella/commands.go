package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/lighting"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/midi/driver/alsa"
	"github.com/gethiox/stradella/internal/pkg/midi/driver/raw"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/spf13/cobra"
)

var (
	gridProfile string
	gridLeft    bool
	gridRight   bool
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Prints notes of every button for the current voicing profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configOrTemplate(configPath)
		if err != nil {
			return err
		}
		path := cfg.Voicing.Profile
		if gridProfile != "" {
			path = gridProfile
		}
		v, _, err := readVoicing(path)
		if err != nil {
			return err
		}
		for _, line := range gridTable(v, gridLeft, gridRight) {
			fmt.Println(line)
		}
		return nil
	},
}

var keymapCmd = &cobra.Command{
	Use:   "keymap [file]",
	Short: "Validates keymap file and prints resulting key assignment",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configOrTemplate(configPath)
		if err != nil {
			return err
		}
		path := cfg.Voicing.Keymap
		if len(args) > 0 {
			path = args[0]
		}
		v, _, err := readVoicing(cfg.Voicing.Profile)
		if err != nil {
			fmt.Printf("%s, default voicing used\n", err)
			v = stradella.DefaultVoicing()
		}

		mapper, skipped, err := keymap.Load(path, v)
		if err != nil {
			return err
		}
		for _, line := range keymapTable(mapper, skipped) {
			fmt.Println(line)
		}
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists available MIDI outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("rtmidi ports:")
		for i, port := range alsa.GetOutPorts() {
			fmt.Printf("  %d: %s\n", i, port.Name())
		}

		devices, err := raw.DetectDevices()
		if err != nil {
			return fmt.Errorf("failed to detect raw devices: %w", err)
		}
		fmt.Println("raw devices:")
		for _, d := range devices {
			fmt.Printf("  %s\n", d)
		}
		return nil
	},
}

var ledsSweep time.Duration

var ledsCmd = &cobra.Command{
	Use:   "leds",
	Short: "Lists OpenRGB controllers and LEDs assigned to grid buttons",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configOrTemplate(configPath)
		if err != nil {
			return err
		}
		controllers, err := lighting.ListControllers(cfg.OpenRGB)
		if err != nil {
			return err
		}

		v, _, err := readVoicing(cfg.Voicing.Profile)
		if err != nil {
			v = stradella.DefaultVoicing()
		}
		mapper, _, err := keymap.Load(cfg.Voicing.Keymap, v)
		if err != nil {
			fmt.Printf("%s, default layout used\n", err)
		}

		for _, line := range controllerTable(controllers, mapper) {
			fmt.Println(line)
		}

		if ledsSweep > 0 {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			return lighting.Sweep(ctx, cfg.OpenRGB, ledsSweep)
		}
		return nil
	},
}

func init() {
	ledsCmd.Flags().DurationVar(&ledsSweep, "sweep", 0, "run a rainbow over the keyboard controller for given time, eg. 10s")

	gridCmd.Flags().StringVar(&gridProfile, "profile", "", "voicing profile file, overrides config")
	gridCmd.Flags().BoolVar(&gridLeft, "left", false, "hold left mouse button")
	gridCmd.Flags().BoolVar(&gridRight, "right", false, "hold right mouse button")

	for _, c := range []*cobra.Command{gridCmd, keymapCmd, portsCmd, ledsCmd} {
		c.PersistentPreRun = func(cmd *cobra.Command, args []string) {
			logger.Discard()
		}
		rootCmd.AddCommand(c)
	}
}

// configOrTemplate reads config file, factory config is used when the file does not exist yet.
func configOrTemplate(path string) (Config, error) {
	cfg, err := LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err := fs.ReadFile(templateConfig, configFile)
		if err != nil {
			return Config{}, err
		}
		return ParseConfig(data)
	}
	return cfg, err
}

// gridTable lists every row of the grid with notes of each button.
func gridTable(v stradella.Voicing, left, right bool) []string {
	var lines []string
	for row := stradella.Row(0); row < stradella.Rows; row++ {
		lines = append(lines, fmt.Sprintf("%s:", row))
		for col := 0; col < stradella.Columns; col++ {
			notes := stradella.Resolve(row, col, &v, left, right)
			names := make([]string, 0, len(notes))
			for _, n := range notes {
				names = append(names, midi.NoteName(n))
			}
			lines = append(lines, fmt.Sprintf("  %-3s %s", stradella.ColumnName(col), strings.Join(names, " ")))
		}
	}
	return lines
}

// keymapTable describes key assignment followed by skipped lines.
func keymapTable(m *keymap.Mapper, skipped []keymap.LineError) []string {
	var lines []string
	for _, e := range m.Entries() {
		lines = append(lines, fmt.Sprintf("%-16s %s", keymap.KeyName(e.Code), e.Description()))
	}
	if len(skipped) > 0 {
		lines = append(lines, fmt.Sprintf("%d lines skipped:", len(skipped)))
		for _, le := range skipped {
			lines = append(lines, "  "+le.Error())
		}
	}
	return lines
}

// controllerTable lists controllers, keyboard LEDs are followed by buttons they light up.
func controllerTable(controllers []lighting.Controller, mapper *keymap.Mapper) []string {
	var lines []string
	for _, c := range controllers {
		kind := "other"
		if c.Keyboard {
			kind = "keyboard"
		}
		lines = append(lines, fmt.Sprintf("%d: \"%s\" (%s, %d leds)", c.Index, c.Name, kind, len(c.LEDs)))
		if !c.Keyboard {
			continue
		}
		cells := lighting.Assignments(c.LEDs, mapper)
		for _, name := range c.LEDs {
			if cell, ok := cells[name]; ok {
				lines = append(lines, fmt.Sprintf("  %-16s %s", name, cell))
			}
		}
	}
	return lines
}
