package input

import (
	"context"
	"fmt"
	"time"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"go.uber.org/zap"
)

func fetchDevices() ([]Device, error) {
	infos, err := GetHandlers()
	if err != nil {
		return nil, err
	}

	var devices []Device
	for _, d := range Normalize(infos) {
		if d.Usable() {
			devices = append(devices, d)
		}
	}
	return devices, nil
}

// MonitorNewDevices polls system input devices and reports every newly connected keyboard and pointer.
// Device that disappears and comes back is reported again.
func MonitorNewDevices(ctx context.Context, discoveryRate time.Duration) <-chan Device {
	var devChan = make(chan Device)

	var trackedDevs = make(map[PhysicalID]Device)

	go func() {
		defer close(devChan)
		log.Info("Monitor new devices engaged", logger.Debug)
		defer log.Info("Monitor new devices disengaged", logger.Debug)

		ticker := time.NewTicker(discoveryRate)
		defer ticker.Stop()

		for {
			current, err := fetchDevices()
			if err != nil {
				log.Info(fmt.Sprintf("failed to fetch input devices: %s", err), logger.Error)
			}

			var newDevs []Device
			var present = make(map[PhysicalID]bool, len(current))
			for _, d := range current {
				present[d.PhysicalUUID()] = true
				if _, ok := trackedDevs[d.PhysicalUUID()]; !ok {
					newDevs = append(newDevs, d)
				}
			}

			for id, d := range trackedDevs {
				if present[id] {
					continue
				}
				log.Info(fmt.Sprintf("Device removed: %s", d.String()), zap.String("device_phys", d.Phys), logger.Info)
				delete(trackedDevs, id)
			}

			for _, d := range newDevs {
				log.Info(fmt.Sprintf("New device: %s", d.String()), zap.String("device_phys", d.Phys), logger.Info)
				trackedDevs[d.PhysicalUUID()] = d
				select {
				case devChan <- d:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return devChan
}
