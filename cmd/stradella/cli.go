package main

import (
	"fmt"
	"strings"

	"github.com/awesome-gocui/gocui"
	"github.com/gethiox/stradella/internal/pkg/expression"
	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/relay"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/gethiox/stradella/internal/pkg/surface"
	"github.com/logrusorgru/aurora"
)

const (
	ViewGrid       = "grid"
	ViewExpression = "expression"
	ViewLogs       = "logs"
	ViewLCD        = "lcd"
)

const (
	labelWidth = 12 // row name column of the grid view
	cellWidth  = 7
	gridWidth  = labelWidth + stradella.Columns*cellWidth
	gridHeight = stradella.Rows + 1 // header line with column roots
)

func GetCli(s *surface.Surface) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.Output256, true)
	if err != nil {
		return nil, err
	}
	g.Mouse = true

	g.SetManagerFunc(Layout)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return nil, err
	}
	if err := g.SetKeybinding("", 'q', gocui.ModNone, quit); err != nil {
		return nil, err
	}
	if err := g.SetKeybinding("", 'p', gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		s.Panic()
		return nil
	}); err != nil {
		return nil, err
	}

	click := func(left, right bool) func(g *gocui.Gui, v *gocui.View) error {
		return func(g *gocui.Gui, v *gocui.View) error {
			x, y := v.Cursor()
			cell, ok := cellAt(x, y)
			if ok {
				s.PointerDown(cell, left, right)
			}
			return nil
		}
	}
	if err := g.SetKeybinding(ViewGrid, gocui.MouseLeft, gocui.ModNone, click(true, false)); err != nil {
		return nil, err
	}
	if err := g.SetKeybinding(ViewGrid, gocui.MouseRight, gocui.ModNone, click(false, true)); err != nil {
		return nil, err
	}
	if err := g.SetKeybinding("", gocui.MouseRelease, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		s.PointerUp()
		return nil
	}); err != nil {
		return nil, err
	}

	return g, nil
}

func Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView(ViewGrid, 0, 0, gridWidth+1, gridHeight+1, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Stradella]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewExpression, gridWidth+2, 0, maxX-23, gridHeight+1, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Expression]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}

	if v, err := g.SetView(ViewLCD, maxX-22, 0, maxX-1, 5, 0); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[lcd 20x4]"
		v.Autoscroll = false
		v.Wrap = true
		v.Frame = true
	}

	if v, err := g.SetView(ViewLogs, 0, gridHeight+2, maxX-1, maxY-1, gocui.TOP); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "[Logs]"
		v.Autoscroll = false
		v.Wrap = false
		v.Frame = true
	}
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

// cellAt translates grid view coordinates into a cell, first line and label column are not clickable.
func cellAt(x, y int) (stradella.Cell, bool) {
	if x < labelWidth || y < 1 {
		return stradella.Cell{}, false
	}
	cell := stradella.Cell{Row: stradella.Row(y - 1), Column: (x - labelWidth) / cellWidth}
	return cell, cell.Valid()
}

func padRight(s string, width int) string {
	l := rawStringLen(s)
	if l >= width {
		return s
	}
	return s + strings.Repeat(" ", width-l)
}

// gridLines draws the button grid, each cell shows its root and the first assigned key.
// Held cells are highlighted.
func gridLines(au aurora.Aurora, mapper *keymap.Mapper, state surface.State) []string {
	held := make(map[int]bool, len(state.Active))
	for _, ac := range state.Active {
		held[ac.Cell.Key()] = true
	}

	var lines []string

	header := strings.Repeat(" ", labelWidth)
	for col := 0; col < stradella.Columns; col++ {
		header += fmt.Sprintf(" %-*s", cellWidth-1, stradella.ColumnName(col))
	}
	lines = append(lines, au.Gray(14, header).String())

	for row := stradella.Row(0); row < stradella.Rows; row++ {
		line := colorForString(au, row.String()).String()
		line = padRight(line, labelWidth)
		for col := 0; col < stradella.Columns; col++ {
			cell := stradella.Cell{Row: row, Column: col}
			label := stradella.ColumnName(col)
			if keys := mapper.Keys(cell); len(keys) > 0 {
				label = keymap.KeyName(keys[0])
			}
			text := fmt.Sprintf(" %-*.*s", cellWidth-1, cellWidth-2, label)
			if held[cell.Key()] {
				line += au.Reverse(au.BrightGreen(text)).String()
			} else {
				line += au.Gray(18, text).String()
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// expressionLines describes pointer expression, modifiers and output statistics.
func expressionLines(au aurora.Aurora, es expression.State, ss surface.State, rs relay.Stats, width int) []string {
	bar := func(v int) string {
		n := 0
		if width > 14 {
			n = v * (width - 14) / 127
		}
		return au.Cyan(strings.Repeat("█", n)).String()
	}
	direction := "-"
	if es.Moving {
		direction = "←"
		if es.MovingRight {
			direction = "→"
		}
	}
	mod := func(on bool, name string) string {
		if on {
			return au.BrightYellow(name).String()
		}
		return au.Gray(8, name).String()
	}

	return []string{
		fmt.Sprintf("pointer    %4d,%4d %s", es.Position.X, es.Position.Y, direction),
		fmt.Sprintf("velocity   %3d %s", ss.Velocity, bar(ss.Velocity)),
		fmt.Sprintf("modulation %3d %s", es.Modulation, bar(es.Modulation)),
		fmt.Sprintf("expression %3d %s", es.Expression, bar(es.Expression)),
		fmt.Sprintf("modifiers  %s %s", mod(ss.Left, "7th"), mod(ss.Right, "9th")),
		fmt.Sprintf("last       %s", ss.LastAction),
		fmt.Sprintf("events %d, dropped %d, errors %d", rs.Events, rs.Dropped, rs.Errors),
	}
}
