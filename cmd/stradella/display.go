package main

import (
	"context"
	"sync"
	"time"

	"github.com/gethiox/stradella/internal/pkg/display"
	"github.com/gethiox/stradella/internal/pkg/surface"
)

// heldNames lists held cells the way the screen shows them.
func heldNames(state surface.State) []string {
	names := make([]string, 0, len(state.Active))
	for _, ac := range state.Active {
		names = append(names, ac.Cell.String())
	}
	return names
}

// GenerateDisplayData produces screen content on every update period, the exit screen is
// sent last when context is done.
func GenerateDisplayData(ctx context.Context, wg *sync.WaitGroup, cfg display.ScreenConfig, s *service) <-chan display.DisplayData {
	data := make(chan display.DisplayData)

	go func() {
		defer wg.Done()
		defer close(data)

		width, _ := cfg.Size()
		graph := display.NewGraph(width)
		period := cfg.UpdateRate
		if period <= 0 {
			period = time.Second
		}

		lastEvents := s.relay.Stats().Events
		lastUpdate := time.Now()

	root:
		for {
			ss := s.surface.State()
			es := s.engine.State()
			events := s.relay.Stats().Events

			now := time.Now()
			elapsed := now.Sub(lastUpdate).Seconds()
			if elapsed <= 0 {
				elapsed = period.Seconds()
			}
			eventsPerSecond := uint(float64(events-lastEvents) / elapsed)
			lastEvents, lastUpdate = events, now
			graph.Push(eventsPerSecond)

			status := display.Status{
				LastAction: ss.LastAction,
				Held:       heldNames(ss),
				Velocity:   ss.Velocity,
				Modulation: es.Modulation,
				Expression: es.Expression,
			}

			select {
			case data <- display.DisplayData{Lines: status.Lines(graph, width)}:
			case <-ctx.Done():
				break root
			}

			select {
			case <-ctx.Done():
				break root
			case <-time.After(period):
			}
		}

		data <- display.DisplayData{
			Lines:   display.ExitLines(cfg, s.surface.State().Presses),
			LastMsg: true,
		}
	}()

	return data
}
