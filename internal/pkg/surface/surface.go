package surface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// VelocitySource provides current expression velocity, expression.Engine satisfies it.
type VelocitySource interface {
	Velocity() int
}

type Config struct {
	Velocity      int // fixed note-on velocity, 0 uses VelocitySource
	VelocityFloor int // lowest velocity taken from VelocitySource
	PanicKey      evdev.EvCode
	LeftModifier  evdev.EvCode
	RightModifier evdev.EvCode
}

func DefaultConfig() Config {
	return Config{
		VelocityFloor: 1,
		PanicKey:      evdev.KEY_ESC,
		LeftModifier:  evdev.BTN_LEFT,
		RightModifier: evdev.BTN_RIGHT,
	}
}

type pressKey struct {
	source string
	code   evdev.EvCode
}

// State is a snapshot of the surface for observers.
type State struct {
	Active     []stradella.ActiveCell
	Left       bool
	Right      bool
	Velocity   int
	LastAction string
	Presses    uint64
}

// Surface routes key presses, pointer clicks and modifier buttons into the press tracker.
// Every physical key is remembered together with the cell it pressed, so a release always
// reaches the same cell even after keymap reload.
type Surface struct {
	mu       sync.Mutex
	cfg      Config
	mapper   *keymap.Mapper
	tracker  *stradella.Tracker
	velocity VelocitySource

	pressed map[pressKey]stradella.Cell

	keyLeft, keyRight     bool // hardware modifier buttons
	clickLeft, clickRight bool // terminal ui clicks
	clicked               *stradella.Cell

	lastAction string
	presses    uint64
}

func New(cfg Config, mapper *keymap.Mapper, tracker *stradella.Tracker, velocity VelocitySource) *Surface {
	return &Surface{
		cfg:      cfg,
		mapper:   mapper,
		tracker:  tracker,
		velocity: velocity,
		pressed:  make(map[pressKey]stradella.Cell),
	}
}

func (s *Surface) SetMapper(m *keymap.Mapper) {
	s.mu.Lock()
	s.mapper = m
	s.mu.Unlock()
	log.Info(fmt.Sprintf("keymap replaced, %d keys assigned", m.Len()), logger.Info)
}

// Mapper returns keymap currently in use, mappers are never modified after being set.
func (s *Surface) Mapper() *keymap.Mapper {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapper
}

func (s *Surface) SetConfig(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// HandleKey processes EV_KEY event of the given source device.
// It returns false for keys that are not used by the surface.
func (s *Surface) HandleKey(source string, code evdev.EvCode, value int32) bool {
	if value == 2 { // repeat
		return s.isUsed(code)
	}
	down := value == 1

	s.mu.Lock()
	defer s.mu.Unlock()

	switch code {
	case s.cfg.PanicKey:
		if down {
			s.panic("panic key")
		}
		return true
	case s.cfg.LeftModifier:
		s.keyLeft = down
		return true
	case s.cfg.RightModifier:
		s.keyRight = down
		return true
	}

	key := pressKey{source: source, code: code}
	if !down {
		cell, ok := s.pressed[key]
		if !ok {
			return s.hasKey(code)
		}
		delete(s.pressed, key)
		s.release(cell, keymap.KeyName(code))
		return true
	}

	if _, ok := s.pressed[key]; ok {
		return true // held already, press without release in between
	}
	cell, ok := s.mapper.Lookup(code)
	if !ok {
		return false
	}
	s.pressed[key] = cell
	s.press(cell, keymap.KeyName(code))
	return true
}

func (s *Surface) isUsed(code evdev.EvCode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch code {
	case s.cfg.PanicKey, s.cfg.LeftModifier, s.cfg.RightModifier:
		return true
	}
	return s.hasKey(code)
}

func (s *Surface) hasKey(code evdev.EvCode) bool {
	_, ok := s.mapper.Lookup(code)
	return ok
}

// PointerDown presses cell with a pointer click, previous click is released first.
func (s *Surface) PointerDown(cell stradella.Cell, left, right bool) {
	if !cell.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clicked != nil {
		s.release(*s.clicked, "click")
	}
	s.clickLeft, s.clickRight = left, right
	s.clicked = &cell
	s.press(cell, "click")
}

// PointerUp releases cell held by a pointer click.
func (s *Surface) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clickLeft, s.clickRight = false, false
	if s.clicked == nil {
		return
	}
	s.release(*s.clicked, "click")
	s.clicked = nil
}

// DirectionChanged restarts held cells with velocity of the reversed motion.
func (s *Surface) DirectionChanged(velocity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	left, right := s.modifiers()
	n := s.tracker.Retrigger(s.noteVelocity(velocity), left, right)
	if n > 0 {
		s.lastAction = fmt.Sprintf("retrigger %d", n)
		log.Info(fmt.Sprintf("direction changed, %d cells retriggered", n), zap.Int("velocity", velocity), logger.Expression)
	}
}

func (s *Surface) Panic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panic("panic")
}

func (s *Surface) panic(reason string) {
	s.tracker.Panic()
	s.pressed = make(map[pressKey]stradella.Cell)
	s.clicked = nil
	s.lastAction = "PANIC"
	log.Info(fmt.Sprintf("%s: all notes off", reason), logger.Action)
}

func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	left, right := s.modifiers()
	return State{
		Active:     s.tracker.Active(),
		Left:       left,
		Right:      right,
		Velocity:   s.noteVelocity(s.currentVelocity()),
		LastAction: s.lastAction,
		Presses:    s.presses,
	}
}

func (s *Surface) press(cell stradella.Cell, source string) {
	left, right := s.modifiers()
	velocity := s.noteVelocity(s.currentVelocity())
	notes := s.tracker.Press(cell, velocity, left, right)
	s.presses++
	s.lastAction = cell.String()
	if notes == nil {
		log.Info(fmt.Sprintf("%s held again", cell), zap.String("key", source), logger.Keys)
		return
	}
	log.Info(
		fmt.Sprintf("%s on [%s]", cell, noteNames(notes)),
		zap.String("key", source), zap.Int("velocity", velocity), logger.Keys,
	)
}

func (s *Surface) release(cell stradella.Cell, source string) {
	notes := s.tracker.Release(cell)
	if notes == nil {
		return
	}
	log.Info(fmt.Sprintf("%s off [%s]", cell, noteNames(notes)), zap.String("key", source), logger.Keys)
}

func (s *Surface) modifiers() (bool, bool) {
	return s.keyLeft || s.clickLeft, s.keyRight || s.clickRight
}

func (s *Surface) currentVelocity() int {
	if s.velocity == nil {
		return 127
	}
	return s.velocity.Velocity()
}

// noteVelocity applies fixed velocity and floor to the expression velocity.
func (s *Surface) noteVelocity(expression int) int {
	if s.cfg.Velocity > 0 {
		return midi.Clamp(s.cfg.Velocity, 1, 127)
	}
	return midi.Clamp(expression, midi.Clamp(s.cfg.VelocityFloor, 0, 127), 127)
}

func noteNames(notes []int) string {
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, midi.NoteName(n))
	}
	return strings.Join(names, " ")
}
