package input

// Related things to separate handlers that comes from /proc/bus/input/devices

import (
	"fmt"
	"strings"

	"github.com/holoplot/go-evdev"
)

type PhysicalID string
type HandlerType int

const (
	DI_TYPE_UNKNOWN    = HandlerType(iota)
	DI_TYPE_STD_KBD    // standard keyboard 6KRO mode
	DI_TYPE_NKRO_KBD   // N-Key Rollover mode
	DI_TYPE_MULTIMEDIA // Multimedia events, e.g. next track, volume up
	DI_TYPE_SYSTEM     // System events, e.g. sleep, power
	DI_TYPE_MOUSE
	DI_TYPE_TOUCHPAD // absolute pointer, tablets and touchpads
)

func (ht HandlerType) String() string {
	switch ht {
	case DI_TYPE_STD_KBD:
		return "STD_KBD"
	case DI_TYPE_NKRO_KBD:
		return "NKRO_KBD"
	case DI_TYPE_MULTIMEDIA:
		return "MULTIMEDIA"
	case DI_TYPE_SYSTEM:
		return "SYSTEM"
	case DI_TYPE_MOUSE:
		return "MOUSE"
	case DI_TYPE_TOUCHPAD:
		return "TOUCHPAD"
	default:
		return "UNKNOWN"
	}
}

// DeviceInfo contains information of every reported event device
// it is supposed to be created by unmarshal function only
type DeviceInfo struct {
	ID       InputID  // ID of the device
	Name     string   // name of the device
	Phys     string   // physical path to the device in the system hierarchy
	Sysfs    string   // sysfs path
	Uniq     string   // unique identification code for the device (if device has it)
	Handlers []string // list of input handles associated with the device
	EV       uint32   // bitmap of supported event types
}

type InputID struct {
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (i *InputID) String() string {
	return fmt.Sprintf("0x%04x 0x%04x 0x%04x 0x%04x", i.Bus, i.Vendor, i.Product, i.Version)
}

// Event returns event name, like "event0" for /dev/input/event0
func (d *DeviceInfo) Event() string {
	for _, handler := range d.Handlers {
		if strings.HasPrefix(handler, "event") {
			return handler
		}
	}
	return ""
}

// EventPath returns a /dev/input/event filepath for button presses
func (d *DeviceInfo) EventPath() string {
	event := d.Event()
	if event == "" {
		return ""
	}
	return fmt.Sprintf("/dev/input/%s", event)
}

// Supports tells whether handler reports all given event types.
func (d *DeviceInfo) Supports(types ...evdev.EvType) bool {
	for _, t := range types {
		if d.EV&(1<<uint(t)) == 0 {
			return false
		}
	}
	return true
}

// Exact EV bitmaps reported by typical handlers
const (
	evStdKeyboard  = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_MSC | 1<<evdev.EV_LED | 1<<evdev.EV_REP
	evNkroKeyboard = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_MSC | 1<<evdev.EV_REP
	evMouse        = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_REL | 1<<evdev.EV_MSC
	evComboMouse   = evMouse | 1<<evdev.EV_ABS | 1<<evdev.EV_LED | 1<<evdev.EV_REP
	evSystem       = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_MSC
	evMultimedia   = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_REL | 1<<evdev.EV_ABS | 1<<evdev.EV_MSC
	evTouchpad     = 1<<evdev.EV_SYN | 1<<evdev.EV_KEY | 1<<evdev.EV_ABS
	evTouchpadMisc = evTouchpad | 1<<evdev.EV_MSC
)

func (d *DeviceInfo) HandlerType() HandlerType {
	switch d.EV {
	case evStdKeyboard:
		return DI_TYPE_STD_KBD
	case evNkroKeyboard:
		return DI_TYPE_NKRO_KBD
	case evMouse, evComboMouse:
		return DI_TYPE_MOUSE
	case evSystem:
		return DI_TYPE_SYSTEM
	case evMultimedia:
		return DI_TYPE_MULTIMEDIA
	case evTouchpad, evTouchpadMisc:
		return DI_TYPE_TOUCHPAD
	}

	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "mouse") {
			if d.Supports(evdev.EV_REL) {
				return DI_TYPE_MOUSE
			}
			return DI_TYPE_TOUCHPAD
		}
	}

	return DI_TYPE_UNKNOWN
}

// PhysicalUUID returns unique UUID based on connection of given USB port
// The main usage is to identify groups of handlers that represent one physical device
func (d *DeviceInfo) PhysicalUUID() PhysicalID {
	phys := strings.Split(d.Phys, "/")
	return PhysicalID(phys[0])
}
