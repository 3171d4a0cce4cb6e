package display

import (
	"fmt"
	"strings"
)

// Status is everything the screen shows while playing.
type Status struct {
	LastAction string
	Held       []string
	Velocity   int
	Modulation int
	Expression int
}

// Graph is a fixed size ring of samples drawn as a single line of bars.
type Graph struct {
	values  []uint
	pointer int
}

func NewGraph(width int) *Graph {
	if width < 1 {
		width = 1
	}
	return &Graph{values: make([]uint, width)}
}

func (g *Graph) Push(v uint) {
	g.values[g.pointer] = v
	g.pointer = (g.pointer + 1) % len(g.values)
}

// String renders samples from the oldest to the newest, scale starts at 8.
func (g *Graph) String() string {
	var max uint = 8
	for _, v := range g.values {
		if v > max {
			max = v
		}
	}

	var sb strings.Builder
	for i := range g.values {
		v := g.values[(g.pointer+i)%len(g.values)]
		if v == 0 {
			sb.WriteRune(' ')
			continue
		}
		realVal := float64(v) / (float64(max) + 1) * 7
		sb.WriteRune(Blocks[int(realVal)])
	}
	return sb.String()
}

// Bar draws value in range [0, max] as horizontal bar with 1/8 character resolution.
func Bar(value, max, width int) string {
	if max <= 0 || width <= 0 {
		return strings.Repeat(" ", width)
	}
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}

	eighths := value * width * 8 / max
	full, rem := eighths/8, eighths%8

	var sb strings.Builder
	sb.WriteString(strings.Repeat(string(Blocks[7]), full))
	n := full
	if rem > 0 && n < width {
		sb.WriteRune(Blocks[rem-1])
		n++
	}
	sb.WriteString(strings.Repeat(" ", width-n))
	return sb.String()
}

// Lines lays status out on a screen of given width, graph occupies the last line.
func (s Status) Lines(graph *Graph, width int) [4]string {
	var lines [4]string

	held := "-"
	if len(s.Held) > 0 {
		held = strings.Join(s.Held, ",")
	}
	barWidth := (width - 8) / 2
	if barWidth < 0 {
		barWidth = 0
	}

	lines[0] = Fit(s.LastAction, width)
	lines[1] = Fit(fmt.Sprintf("held %s", held), width)
	lines[2] = Fit(fmt.Sprintf("v%3d M%s E%s", s.Velocity, Bar(s.Modulation, 127, barWidth), Bar(s.Expression, 127, barWidth)), width)
	lines[3] = Fit(graph.String(), width)
	return lines
}

// ExitLines returns custom exit message or the default farewell.
func ExitLines(cfg ScreenConfig, presses uint64) [4]string {
	width, _ := cfg.Size()
	var lines [4]string

	if cfg.HaveExitMessage() {
		for i, msg := range cfg.ExitMessage {
			lines[i] = Fit(msg, width)
		}
		return lines
	}

	center := func(s string) string {
		n := len([]rune(s))
		return Fit(fmt.Sprintf("%*s", (width+n)/2, s), width)
	}
	lines[0] = Fit("", width)
	lines[1] = center("thanks for playing")
	lines[2] = center(fmt.Sprintf("%c stradella %c", Note, Heart))
	lines[3] = center(fmt.Sprintf("(presses: %d)", presses))
	return lines
}
