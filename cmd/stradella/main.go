package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/stradella/internal/pkg/display"
	"github.com/gethiox/stradella/internal/pkg/lighting"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/utils"
	"github.com/spf13/cobra"
)

var log = logger.GetLogger()

var version = "dev"

var (
	configPath string
	ui         bool
	force256   bool
	nocolor    bool
	silent     bool
	noGrab     bool
	debug      bool
	logLevel   int
)

var rootCmd = &cobra.Command{
	Use:   "stradella",
	Short: "Accordion bass buttons on your computer keyboard",
	Long: `Stradella turns keyboards and mice into the left hand of a piano accordion.
Keys play counterbass, bass and chord buttons of the Stradella system,
mouse movement acts as the bellows and drives note velocity, modulation and expression.`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the instrument (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", configFile, "path to stradella.config")
	flags.BoolVar(&ui, "ui", false, "engage terminal ui")
	flags.BoolVar(&force256, "256", false, "force 256 color mode")
	flags.BoolVar(&nocolor, "nocolor", false, "disable color")
	flags.BoolVar(&silent, "silent", false, "no output logging")
	flags.BoolVar(&noGrab, "nograb", false, "do not grab input devices, overrides config")
	flags.BoolVar(&debug, "debug", false, "show debug logs")
	flags.IntVar(&logLevel, "loglevel", 2,
		"logging level, each level enables additional information class (0-3)\n"+
			"0: general info (eg. device appearance, config reload)\n"+
			"1: actions (panic, retrigger)\n"+
			"2: played buttons\n"+
			"3: expression events",
	)

	rootCmd.AddCommand(runCmd)
}

func effectiveLogLevel() int {
	if debug {
		return logger.DebugLvl
	}
	return logLevel + logger.InfoLvl
}

func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, cancel func(), g *gocui.Gui) {
	defer wg.Done()
	var counter int
	for sig := range sigs {
		if counter > 0 {
			fmt.Println("Dirty exit")
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
		cancel()
		if g != nil {
			g.Update(func(g *gocui.Gui) error {
				return gocui.ErrQuit
			})
		}
		counter++
	}
}

// runUI starts terminal ui, returned channel is closed when the ui is gone.
// Leaving the ui stops the whole program.
func runUI(s *service, cancel func()) (*gocui.Gui, <-chan struct{}, error) {
	g, err := GetCli(s.surface)
	if err != nil {
		return nil, nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		err := g.MainLoop()
		g.Close()
		if err != nil && err != gocui.ErrQuit {
			fmt.Printf("ui failed: %s\n", err)
		}
		cancel()
	}()
	return g, done, nil
}

func run() error {
	if force256 {
		os.Setenv("TERM", "xterm-256color")
	}
	level := effectiveLogLevel()

	err := createConfigDirectoryIfNeeded()
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("stradella config: %+v", cfg), logger.Debug)

	s, err := newService(cfg)
	if err != nil {
		return err
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var g *gocui.Gui
	var uiDone <-chan struct{}
	if ui && !silent {
		g, uiDone, err = runUI(s, cancel)
		if err != nil {
			return fmt.Errorf("failed to start ui: %w", err)
		}
	}

	// this wait-group has to be propagated everywhere where usual logging appear
	wg := sync.WaitGroup{}

	wg.Add(1)
	go handleSigs(&wg, sigs, cancel, g)

	wg.Add(1)
	dd := GenerateDisplayData(ctx, &wg, cfg.Screen, s)
	outs := utils.FanOut(dd, 2)

	if cfg.Screen.Enabled {
		wg.Add(1)
		go display.HandleDisplay(&wg, cfg.Screen, outs[0])
	} else {
		utils.Drain(outs[0])
	}

	if cfg.OpenRGB.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lighting.Run(ctx, cfg.OpenRGB, s.surface)
		}()
	}

	switch {
	case g != nil:
		go logView(g, !nocolor, level, cfg.Stradella.LogBufferSize, cfg.Stradella.LogViewRate)
		go overviewView(ctx, g, !nocolor, s, cfg.Stradella.LogViewRate)
		go lcdView(g, outs[1])
	case silent:
		utils.Drain(outs[1])
		logger.Discard()
	default:
		utils.Drain(outs[1])
		fmt.Printf("for nicer output use --ui flag\n")
		go printLogs(!nocolor, level)
	}

	grab := cfg.Stradella.Grab && !noGrab
	err = s.runManager(ctx, grab)
	cancel()

	signal.Stop(sigs)
	if g != nil {
		g.Update(func(g *gocui.Gui) error {
			return gocui.ErrQuit
		})
		<-uiDone
	}
	close(sigs)

	// closing logger can be safely invoked only when all internally running goroutines (that may emit logs) are done
	wg.Wait()
	close(logger.Messages)

	if !silent {
		state := s.surface.State()
		fmt.Printf("session %s: %d button presses\n", s.session, state.Presses)
	}
	return err
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
