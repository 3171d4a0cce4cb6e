package input

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Collects all separate device-info handlers together for building one logical handler

type DeviceType int
type DeviceID string

// Generic device types
const (
	UnknownDevice  DeviceType = iota
	KeyboardDevice            // keyboard only
	MouseDevice               // mouse or any other pointer only
	ComboDevice               // keyboard with integrated pointer
)

type InputEvent struct {
	Source DeviceInfo
	Event  evdev.InputEvent
	Axes   Axes // absolute axis ranges of the source handler, nil for relative devices
}

func (e DeviceType) String() string {
	switch e {
	case KeyboardDevice:
		return "Keyboard"
	case MouseDevice:
		return "Mouse"
	case ComboDevice:
		return "Combo"
	default:
		return "Unknown"
	}
}

func contains(in map[HandlerType]DeviceInfo, handlerTypes ...HandlerType) bool {
	for _, ht := range handlerTypes {
		if _, ok := in[ht]; ok {
			return true
		}
	}
	return false
}

var (
	keyboardHandlers = []HandlerType{DI_TYPE_STD_KBD, DI_TYPE_NKRO_KBD}
	pointerHandlers  = []HandlerType{DI_TYPE_MOUSE, DI_TYPE_TOUCHPAD}
)

func DetermineDeviceType(handlers map[HandlerType]DeviceInfo) DeviceType {
	keyboard := contains(handlers, keyboardHandlers...)
	pointer := contains(handlers, pointerHandlers...)
	switch {
	case keyboard && pointer:
		return ComboDevice
	case keyboard:
		return KeyboardDevice
	case pointer:
		return MouseDevice
	default:
		return UnknownDevice
	}
}

// Normalize processes all DeviceInfo list and returns generic devices with its underlying DeviceInfo handlers
func Normalize(deviceInfos []DeviceInfo) []Device {
	var collection = make(map[PhysicalID][]DeviceInfo, 0)
	var order []PhysicalID

	for _, di := range deviceInfos {
		if di.Phys == "" {
			continue // virtual devices, including our own
		}
		key := di.PhysicalUUID()
		if _, ok := collection[key]; !ok {
			order = append(order, key)
		}
		collection[key] = append(collection[key], di)
	}

	var devices = make([]Device, 0, len(order))

	for _, devPhys := range order {
		dis := collection[devPhys]
		var dev = Device{
			ID:       dis[0].ID,
			Handlers: make(map[HandlerType]DeviceInfo),
		}

		var name = ""
		var uniq = ""

		for _, di := range dis {
			switch {
			case name == "":
				name = di.Name
			case len(di.Name) < len(name):
				name = di.Name
			}

			if di.Uniq != "" && uniq == "" {
				uniq = di.Uniq
			}

			ht := di.HandlerType()
			if _, ok := dev.Handlers[ht]; ok {
				log.Info(fmt.Sprintf("duplicated %s handler ignored: %s", ht, di.Event()), logger.Debug)
				continue
			}
			dev.Handlers[ht] = di
		}

		dev.DeviceType = DetermineDeviceType(dev.Handlers)
		dev.Name = name
		dev.Uniq = uniq
		dev.Phys = string(devPhys)
		devices = append(devices, dev)
	}

	return devices
}

// Device is a representation of singular hardware device, it keeps all underlying DeviceInfo handlers
type Device struct {
	ID   InputID
	Name string
	Uniq string
	// Phys is a common part of Handlers Phys
	// for example "usb-20980000.usb-1.4/input0" will be used as "usb-20980000.usb-1.4"
	Phys string

	DeviceType DeviceType
	Handlers   map[HandlerType]DeviceInfo
}

func (d *Device) String() string {
	return fmt.Sprintf(
		"[%s], \"%s\", %d handlers (0x%04x, 0x%04x, 0x%04x, 0x%04x, \"%s\")",
		d.DeviceType, d.Name, len(d.Handlers), d.ID.Bus, d.ID.Vendor, d.ID.Product, d.ID.Version, d.Uniq,
	)
}

// DeviceID returns identifier of the device model, devices without Uniq are indistinguishable.
func (d *Device) DeviceID() DeviceID {
	s := fmt.Sprintf("%04x%04x%04x%04x%s", d.ID.Bus, d.ID.Vendor, d.ID.Product, d.ID.Version, d.Uniq)
	return DeviceID(s)
}

func (d *Device) PhysicalUUID() PhysicalID {
	return PhysicalID(d.Phys)
}

// Usable tells whether device can drive the grid or the pointer.
func (d *Device) Usable() bool {
	return d.DeviceType != UnknownDevice
}

// inputHandlers returns handlers relevant for playing, ordered by type.
func (d *Device) inputHandlers() []DeviceInfo {
	var types []HandlerType
	for ht := range d.Handlers {
		switch ht {
		case DI_TYPE_STD_KBD, DI_TYPE_NKRO_KBD, DI_TYPE_MOUSE, DI_TYPE_TOUCHPAD:
			types = append(types, ht)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	infos := make([]DeviceInfo, 0, len(types))
	for _, ht := range types {
		infos = append(infos, d.Handlers[ht])
	}
	return infos
}

// ProcessEvents reads keyboard and pointer handlers of the device until context is done
// or the device disappears. Key auto-repeat events are dropped.
func (d *Device) ProcessEvents(ctx context.Context, grab bool) (<-chan InputEvent, error) {
	var events = make(chan InputEvent)

	var opened []*evdev.InputDevice
	var infos []DeviceInfo
	for _, h := range d.inputHandlers() {
		dev, err := evdev.Open(h.EventPath())
		if err != nil {
			for _, o := range opened {
				_ = o.Close()
			}
			return nil, fmt.Errorf("opening handler failed: %w", err)
		}
		opened = append(opened, dev)
		infos = append(infos, h)
	}

	wg := sync.WaitGroup{}
	for i, dev := range opened {
		go func(dev *evdev.InputDevice) {
			<-ctx.Done()
			err := dev.Close()
			if err != nil {
				log.Info(fmt.Sprintf("[%s] device close failed: %v", dev.Path(), err), logger.Debug)
			}
		}(dev)

		var axes Axes
		if infos[i].Supports(evdev.EV_ABS) {
			abs, err := dev.AbsInfos()
			if err != nil {
				log.Info(fmt.Sprintf("[%s] reading axis ranges failed: %v", dev.Path(), err), logger.Warning)
			}
			axes = abs
		}

		wg.Add(1)
		go func(dev *evdev.InputDevice, info DeviceInfo, axes Axes) {
			event := info.Event()
			name, _ := dev.Name()
			name = strings.Trim(name, "\x00")
			defer wg.Done()

			if grab {
				_ = dev.Grab()
				log.Info("Grabbing device for exclusive usage", zap.String("handler_event", event), zap.String("handler_name", name), logger.Debug)
			}
			log.Info("Reading input events", zap.String("handler_event", event), zap.String("handler_name", name), logger.Debug)

			for {
				ev, err := dev.ReadOne()
				if err != nil {
					break
				}

				if ev.Type == evdev.EV_KEY && ev.Value == 2 { // repeat
					continue
				}

				select {
				case events <- InputEvent{Source: info, Event: *ev, Axes: axes}:
				case <-ctx.Done():
				}
			}
			if grab {
				log.Info("Ungrabbing device", zap.String("handler_event", event), zap.String("handler_name", name), logger.Debug)
				_ = dev.Ungrab()
			}
			log.Info("Reading input events finished", zap.String("handler_event", event), zap.String("handler_name", name), logger.Debug)
		}(dev, infos[i], axes)
	}

	go func() {
		wg.Wait()
		log.Info("All handlers done, closing events channel", zap.String("device", d.Name), logger.Debug)
		close(events)
	}()

	return events, nil
}
