package input

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const devicesPath = "/proc/bus/input/devices"

// GetHandlers returns a list of available input handlers in the system.
// Note: there is non-zero probability that returned list may be incomplete,
// no matter where they come from, either /proc/bus/input/devices or /dev/input listing has the same behavior.
// This is needed to be handled when user wants to have a complete group of handlers for given hardware device.
func GetHandlers() ([]DeviceInfo, error) {
	data, err := os.ReadFile(devicesPath)
	if err != nil {
		return nil, err
	}

	di, err := unmarshal(data)
	if err != nil {
		return nil, err
	}

	return di, nil
}

// unmarshal parses /proc/bus/input/devices file
func unmarshal(data []byte) ([]DeviceInfo, error) {
	var devices = make([]DeviceInfo, 0)

	var device DeviceInfo
	var started bool

	flush := func() {
		if started {
			devices = append(devices, device)
		}
		device = DeviceInfo{}
		started = false
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(line) < 3 || line[1] != ':' {
			return devices, fmt.Errorf("unexpected line format: \"%s\"", line)
		}
		started = true

		label := line[:1]
		info := line[3:]

		switch label {
		case "I":
			for _, param := range strings.Fields(info) {
				l, v, ok := strings.Cut(param, "=")
				if !ok {
					return devices, fmt.Errorf("invalid id field: \"%s\"", param)
				}
				uv, err := strconv.ParseUint(v, 16, 16)
				if err != nil {
					return devices, fmt.Errorf("hex decoding failed: %w", err)
				}
				switch l {
				case "Bus":
					device.ID.Bus = uint16(uv)
				case "Vendor":
					device.ID.Vendor = uint16(uv)
				case "Product":
					device.ID.Product = uint16(uv)
				case "Version":
					device.ID.Version = uint16(uv)
				}
			}
		case "N":
			device.Name = strings.Trim(strings.TrimPrefix(info, "Name="), "\"")
		case "P":
			device.Phys = strings.TrimPrefix(info, "Phys=")
		case "S":
			device.Sysfs = strings.TrimPrefix(info, "Sysfs=")
		case "U":
			device.Uniq = strings.TrimPrefix(info, "Uniq=")
		case "H":
			// If there is at least one handler, there is additional space at the end of the line
			device.Handlers = strings.Fields(strings.TrimPrefix(info, "Handlers="))
		case "B":
			l, vs, ok := strings.Cut(info, "=")
			if !ok || l != "EV" {
				continue
			}
			// bitmaps are printed from the most significant word, EV fits in one
			words := strings.Fields(vs)
			if len(words) == 0 {
				continue
			}
			uv, err := strconv.ParseUint(words[len(words)-1], 16, 32)
			if err != nil {
				return devices, fmt.Errorf("hex decoding failed: %w", err)
			}
			device.EV = uint32(uv)
		}
	}
	flush()

	return devices, nil
}
