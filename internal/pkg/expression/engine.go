package expression

import (
	"context"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gethiox/stradella/internal/pkg/midi"
)

// Pointer is a black-box position sensor sampled on every tick.
type Pointer interface {
	Position() image.Point
	Bounds() image.Rectangle // area used for velocity mapping, usually the screen
}

// Sink accepts batches of midi events, midi.Queue satisfies it.
type Sink interface {
	Enqueue(events ...midi.Event)
}

type Config struct {
	Channel       uint8
	Modulation    bool // emit CC1
	Expression    bool // emit CC11
	Curve         Curve
	Retrigger     bool // notify about horizontal direction changes
	DecayDelay    time.Duration
	DecayDuration time.Duration
	TickRate      time.Duration
}

func DefaultConfig() Config {
	return Config{
		Modulation:    true,
		Expression:    true,
		Curve:         Linear,
		Retrigger:     true,
		DecayDelay:    100 * time.Millisecond,
		DecayDuration: 200 * time.Millisecond,
		TickRate:      16 * time.Millisecond,
	}
}

type controller struct {
	number  uint8
	held    int // value tracked during the last horizontal movement
	current int
	sent    int
}

// State is a snapshot of the engine for observers.
type State struct {
	Position    image.Point
	Velocity    int
	Modulation  int
	Expression  int
	Moving      bool
	MovingRight bool
	Speed       float64 // horizontal speed in pixels per second
}

// Engine derives note velocity from vertical pointer position and two decaying controller
// streams from horizontal motion. Tick is serialized internally, Velocity is safe to read
// from any goroutine.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	pointer Pointer
	sink    Sink
	now     func() time.Time

	onDirectionChange func(velocity int)

	sampled      bool
	last         image.Point
	lastSample   time.Time
	moving       bool
	movingRight  bool
	lastMovement time.Time
	speed        float64

	modulation, expression controller

	velocity atomic.Int32
}

func NewEngine(cfg Config, pointer Pointer, sink Sink) *Engine {
	e := &Engine{
		cfg:        cfg,
		pointer:    pointer,
		sink:       sink,
		now:        time.Now,
		modulation: controller{number: midi.Modulation},
		expression: controller{number: midi.Expression},
	}
	return e
}

// OnDirectionChange registers callback fired when horizontal movement reverses.
// Callback runs on the ticking goroutine after the engine state is updated.
func (e *Engine) OnDirectionChange(f func(velocity int)) {
	e.mu.Lock()
	e.onDirectionChange = f
	e.mu.Unlock()
}

func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
}

func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Velocity returns the most recent note velocity (0-127).
func (e *Engine) Velocity() int {
	return int(e.velocity.Load())
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Position:    e.last,
		Velocity:    e.Velocity(),
		Modulation:  e.modulation.current,
		Expression:  e.expression.current,
		Moving:      e.moving,
		MovingRight: e.movingRight,
		Speed:       e.speed,
	}
}

// Run ticks the engine until context is done.
func (e *Engine) Run(ctx context.Context) {
	rate := e.Config().TickRate
	if rate <= 0 {
		rate = DefaultConfig().TickRate
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick performs one sampling step.
func (e *Engine) Tick() {
	e.mu.Lock()
	pos := e.pointer.Position()

	if e.sampled && pos == e.last && !e.decayPending() {
		e.mu.Unlock()
		return
	}

	now := e.now()
	var dx int
	if e.sampled {
		dx = pos.X - e.last.X
	}
	dt := now.Sub(e.lastSample)
	if !e.sampled || dt <= 0 {
		dt = time.Millisecond
	}
	e.speed = math.Abs(float64(dx)) / dt.Seconds()
	e.last, e.lastSample, e.sampled = pos, now, true

	velocity := velocityFor(pos.Y, e.pointer.Bounds())
	e.velocity.Store(int32(velocity))

	var directionChanged bool
	moving := dx != 0
	if moving {
		right := dx > 0
		if e.moving && right != e.movingRight && e.cfg.Retrigger {
			directionChanged = true
		}
		e.movingRight = right
		e.lastMovement = now
	}
	e.moving = moving

	target := int(math.Round(ApplyCurve(e.cfg.Curve, float64(velocity)/127) * 127))

	var events []midi.Event
	for _, c := range []struct {
		ctrl    *controller
		enabled bool
	}{
		{ctrl: &e.modulation, enabled: e.cfg.Modulation},
		{ctrl: &e.expression, enabled: e.cfg.Expression},
	} {
		c.ctrl.current = e.controllerValue(c.ctrl, moving, target, now)
		if !c.enabled || abs(c.ctrl.current-c.ctrl.sent) < 1 {
			continue
		}
		c.ctrl.sent = c.ctrl.current
		events = append(events, midi.ControlChangeEvent(e.cfg.Channel, c.ctrl.number, c.ctrl.current))
	}

	callback := e.onDirectionChange
	e.mu.Unlock()

	if len(events) > 0 {
		e.sink.Enqueue(events...)
	}
	if directionChanged && callback != nil {
		callback(velocity)
	}
}

func (e *Engine) controllerValue(c *controller, moving bool, target int, now time.Time) int {
	if moving {
		c.held = target
		return target
	}

	elapsed := now.Sub(e.lastMovement)
	switch {
	case elapsed <= e.cfg.DecayDelay:
		return c.held
	case elapsed >= e.cfg.DecayDelay+e.cfg.DecayDuration:
		return 0
	}
	progress := float64(elapsed-e.cfg.DecayDelay) / float64(e.cfg.DecayDuration)
	return int(math.Round(float64(c.held) * (1 - progress)))
}

// decayPending tells whether an enabled controller still has to reach zero.
func (e *Engine) decayPending() bool {
	return (e.cfg.Modulation && e.modulation.sent != 0) || (e.cfg.Expression && e.expression.sent != 0)
}

func velocityFor(y int, bounds image.Rectangle) int {
	height := bounds.Dy()
	if height <= 0 {
		height = 1
	}
	relative := float64(y-bounds.Min.Y) / float64(height)
	return int(midi.Clamp(math.Round((1-relative)*127), 0, 127))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
