package alsa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gethiox/stradella/internal/pkg/midi/driver"
	gomidi "gitlab.com/gomidi/midi/v2"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

// OutPort adapts gomidi output port.
type OutPort struct {
	port drivers.Out
	open bool
}

func (out *OutPort) Name() string {
	return out.port.String()
}

func (out *OutPort) Open() error {
	if out.port.IsOpen() {
		out.open = true
		return nil
	}
	err := out.port.Open()
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}
	out.open = true
	return nil
}

func (out *OutPort) Close() error {
	out.open = false
	return out.port.Close()
}

func (out *OutPort) Send(data []byte) error {
	if !out.open {
		return driver.ErrNotOpen
	}
	return out.port.Send(data)
}

func NewOutPort(out drivers.Out) *OutPort {
	return &OutPort{port: out}
}

// CreateVirtualOut creates a new ALSA sequencer output visible to other applications.
func CreateVirtualOut(name string) (*OutPort, error) {
	d := drivers.Get()
	if d == nil {
		return nil, fmt.Errorf("failed to get driver")
	}

	rtmidid, ok := d.(*rtmididrv.Driver)
	if !ok {
		return nil, fmt.Errorf("failed to convert driver")
	}

	out, err := rtmidid.OpenVirtualOut(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open virtual output: %w", err)
	}
	return NewOutPort(out), nil
}

// GetOutPorts lists available hardware and software output ports.
func GetOutPorts() []*OutPort {
	var ports []*OutPort
	for _, p := range gomidi.GetOutPorts() {
		ports = append(ports, NewOutPort(p))
	}
	return ports
}

// PickOutPort returns port by its index or by case-insensitive name fragment.
func PickOutPort(selector string) (*OutPort, error) {
	ports := GetOutPorts()
	if len(ports) == 0 {
		return nil, fmt.Errorf("there is no midi output ports available")
	}

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ports[0], nil
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 0 || idx >= len(ports) {
			return nil, fmt.Errorf("midi port ID %d doesn't exist", idx)
		}
		return ports[idx], nil
	}

	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.Name()), strings.ToLower(selector)) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("midi port matching \"%s\" not found", selector)
}
