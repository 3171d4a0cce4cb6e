package input

import (
	"image"
	"math"
	"sync"

	"github.com/holoplot/go-evdev"
)

// Pointer is a virtual cursor driven by relative and absolute motion of every connected
// pointing device. Position is clamped to bounds, safe for concurrent use.
type Pointer struct {
	mu     sync.Mutex
	pos    image.Point
	bounds image.Rectangle
}

// NewPointer creates pointer placed in the middle of bounds.
func NewPointer(bounds image.Rectangle) *Pointer {
	bounds = bounds.Canon()
	center := image.Point{
		X: bounds.Min.X + bounds.Dx()/2,
		Y: bounds.Min.Y + bounds.Dy()/2,
	}
	return &Pointer{pos: center, bounds: bounds}
}

func (p *Pointer) Position() image.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

func (p *Pointer) Bounds() image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bounds
}

// Move shifts the pointer by relative offset.
func (p *Pointer) Move(dx, dy int) {
	p.mu.Lock()
	p.pos = p.clamp(p.pos.Add(image.Point{X: dx, Y: dy}))
	p.mu.Unlock()
}

// Set places the pointer at absolute position.
func (p *Pointer) Set(pos image.Point) {
	p.mu.Lock()
	p.pos = p.clamp(pos)
	p.mu.Unlock()
}

// Axes keeps absolute axis ranges of a single event handler.
type Axes map[evdev.EvCode]evdev.AbsInfo

// HandleEvent applies motion event, other events are ignored.
// Absolute values are mapped from the axis range onto bounds, axes without
// known range are taken as screen coordinates.
// Returns true if the event was consumed.
func (p *Pointer) HandleEvent(ev evdev.InputEvent, axes Axes) bool {
	switch ev.Type {
	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			p.Move(int(ev.Value), 0)
			return true
		case evdev.REL_Y:
			p.Move(0, int(ev.Value))
			return true
		}
	case evdev.EV_ABS:
		p.mu.Lock()
		defer p.mu.Unlock()
		switch ev.Code {
		case evdev.ABS_X:
			x := scale(ev.Value, axes, ev.Code, p.bounds.Min.X, p.bounds.Max.X)
			p.pos = p.clamp(image.Point{X: x, Y: p.pos.Y})
			return true
		case evdev.ABS_Y:
			y := scale(ev.Value, axes, ev.Code, p.bounds.Min.Y, p.bounds.Max.Y)
			p.pos = p.clamp(image.Point{X: p.pos.X, Y: y})
			return true
		}
	}
	return false
}

func scale(value int32, axes Axes, code evdev.EvCode, lo, hi int) int {
	info, ok := axes[code]
	if !ok || info.Maximum <= info.Minimum {
		return int(value)
	}
	ratio := float64(value-info.Minimum) / float64(info.Maximum-info.Minimum)
	return lo + int(math.Round(ratio*float64(hi-lo)))
}

// clamp keeps point within bounds, max edge inclusive.
func (p *Pointer) clamp(pt image.Point) image.Point {
	if pt.X < p.bounds.Min.X {
		pt.X = p.bounds.Min.X
	}
	if pt.X > p.bounds.Max.X {
		pt.X = p.bounds.Max.X
	}
	if pt.Y < p.bounds.Min.Y {
		pt.Y = p.bounds.Min.Y
	}
	if pt.Y > p.bounds.Max.Y {
		pt.Y = p.bounds.Max.Y
	}
	return pt
}
