package main

import (
	"context"
	"fmt"
	"time"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/stradella/internal/pkg/display"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
)

func writeLines(v *gocui.View, lines []string) {
	v.Rewind()
	for _, l := range lines {
		v.Write([]byte(l))
		v.Write([]byte{'\n'})
	}
}

// overviewView refreshes grid and expression views until context is done.
func overviewView(ctx context.Context, g *gocui.Gui, colors bool, s *service, rate time.Duration) {
	au := aurora.NewAurora(colors)

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ss := s.surface.State()
		es := s.engine.State()
		rs := s.relay.Stats()
		mapper := s.surface.Mapper()

		g.Update(func(g *gocui.Gui) error {
			grid, err := g.View(ViewGrid)
			if err != nil {
				return nil
			}
			writeLines(grid, gridLines(au, mapper, ss))

			expr, err := g.View(ViewExpression)
			if err != nil {
				return nil
			}
			x, _ := expr.Size()
			writeLines(expr, expressionLines(au, es, ss, rs, x))
			return nil
		})
	}
}

// logView feeds log view with the newest messages, it ends when logger.Messages gets closed.
func logView(g *gocui.Gui, color bool, logLevel, bufSize int, rate time.Duration) {
	au := aurora.NewAurora(color)
	buf := newLogBuffer(bufSize)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range logger.Messages {
			buf.WriteMessage(msg)
		}
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		g.Update(func(g *gocui.Gui) error {
			v, err := g.View(ViewLogs)
			if err != nil {
				return nil
			}
			x, y := v.Size()

			var lines []string
			for _, data := range buf.ReadLastMessages(y) {
				msg, err := unpack(data)
				if err != nil {
					lines = append(lines, string(data))
					continue
				}
				if s := prepareString(msg, au, x, logLevel); s != "" {
					lines = append(lines, s)
				}
			}
			v.Clear()
			writeLines(v, lines)
			return nil
		})
	}
}

func lcdView(g *gocui.Gui, dd <-chan display.DisplayData) {
	for data := range dd {
		lines := data.Lines
		g.Update(func(g *gocui.Gui) error {
			v, err := g.View(ViewLCD)
			if err != nil {
				return nil
			}
			writeLines(v, lines[:])
			return nil
		})
	}
}

// printLogs writes colored log entries to stdout, used when terminal UI is disabled.
func printLogs(color bool, logLevel int) {
	au := aurora.NewAurora(color)
	for data := range logger.Messages {
		msg, err := unpack(data)
		if err != nil {
			fmt.Printf("%s\n", string(data))
			continue
		}
		if m := prepareString(msg, au, -1, logLevel); m != "" {
			fmt.Printf("%s\n", m)
		}
	}
}
