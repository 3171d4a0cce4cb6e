package raw

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gethiox/stradella/internal/pkg/midi/driver"
)

const devicesDir = "/dev/snd"

// DetectDevices lists raw midi character devices.
func DetectDevices() ([]string, error) {
	return detectDevices(devicesDir)
}

func detectDevices(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list \"%s\": %w", dir, err)
	}

	var devices []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), "midi") {
			devices = append(devices, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(devices)
	return devices, nil
}

// Device writes messages directly into a raw midi device node.
type Device struct {
	mu   sync.Mutex
	path string
	fd   *os.File
}

// NewDevice returns device for given path, empty path picks the first detected one.
func NewDevice(path string) (*Device, error) {
	if path == "" {
		devices, err := DetectDevices()
		if err != nil {
			return nil, err
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("there is no raw midi devices in %s", devicesDir)
		}
		path = devices[0]
	}
	return &Device{path: path}, nil
}

func (d *Device) Name() string {
	return d.path
}

func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fd, err := os.OpenFile(d.path, os.O_WRONLY|os.O_SYNC, 0)
	if err != nil {
		return fmt.Errorf("failed to open raw device: %w", err)
	}
	d.fd = fd
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd == nil {
		return nil
	}
	err := d.fd.Close()
	d.fd = nil
	return err
}

func (d *Device) Send(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fd == nil {
		return driver.ErrNotOpen
	}
	_, err := d.fd.Write(data)
	return err
}
