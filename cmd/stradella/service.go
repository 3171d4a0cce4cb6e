package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gethiox/stradella/internal/pkg/expression"
	"github.com/gethiox/stradella/internal/pkg/input"
	"github.com/gethiox/stradella/internal/pkg/keymap"
	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/midi/driver"
	"github.com/gethiox/stradella/internal/pkg/midi/driver/alsa"
	"github.com/gethiox/stradella/internal/pkg/midi/driver/raw"
	"github.com/gethiox/stradella/internal/pkg/midi/driver/smf"
	"github.com/gethiox/stradella/internal/pkg/profile"
	"github.com/gethiox/stradella/internal/pkg/relay"
	"github.com/gethiox/stradella/internal/pkg/stradella"
	"github.com/gethiox/stradella/internal/pkg/surface"
	"github.com/google/uuid"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

const virtualPortName = "stradella"

// service holds every running part of the instrument.
type service struct {
	cfg     Config
	session uuid.UUID

	queue   *midi.Queue
	tracker *stradella.Tracker
	pointer *input.Pointer
	engine  *expression.Engine
	surface *surface.Surface
	relay   *relay.Relay
	outputs driver.Outputs
}

func readVoicing(path string) (stradella.Voicing, string, error) {
	p, err := profile.Load(path)
	if err != nil {
		return stradella.Voicing{}, "", fmt.Errorf("failed to load profile: %w", err)
	}
	v, err := p.Voicing()
	if err != nil {
		return stradella.Voicing{}, p.Name, fmt.Errorf("invalid profile \"%s\": %w", p.Name, err)
	}
	return v, p.Name, nil
}

// loadVoicing reads voicing profile, fallback is used when the profile is not usable.
func loadVoicing(path string, fallback stradella.Voicing, fallbackName string) stradella.Voicing {
	v, name, err := readVoicing(path)
	if err != nil {
		log.Info(fmt.Sprintf("%s, using %s voicing", err, fallbackName), zap.String("path", path), logger.Error)
		return fallback
	}
	log.Info(fmt.Sprintf("Voicing profile loaded: %s", name), zap.String("path", path), logger.Info)
	return v
}

// loadKeymap reads keymap file, skipped lines are reported at debug level.
func loadKeymap(path string, voicing stradella.Voicing) *keymap.Mapper {
	mapper, skipped, err := keymap.Load(path, voicing)
	if err != nil {
		log.Info(fmt.Sprintf("failed to load keymap, using default layout: %s", err), zap.String("path", path), logger.Warning)
	}
	for _, le := range skipped {
		log.Info(fmt.Sprintf("keymap line skipped: %s", le.Error()), zap.String("path", path), logger.Debug)
	}
	log.Info(fmt.Sprintf("Keymap loaded, %d keys assigned", mapper.Len()), zap.String("path", path), logger.Info)
	return mapper
}

func openOutputs(cfg MIDI, session uuid.UUID) (driver.Outputs, error) {
	var outputs driver.Outputs

	switch cfg.Output {
	case OutputRtmidi:
		port, err := alsa.PickOutPort(cfg.Port)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, port)
	case OutputVirtual:
		port, err := alsa.CreateVirtualOut(virtualPortName)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, port)
	case OutputRaw:
		dev, err := raw.NewDevice(cfg.Device)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, dev)
	case OutputNone:
	}

	if cfg.Record != "" {
		outputs = append(outputs, smf.NewRecorder(cfg.Record, session.String()))
	}
	return outputs, nil
}

func newService(cfg Config) (*service, error) {
	s := &service{cfg: cfg, session: uuid.New()}

	voicing := loadVoicing(cfg.Voicing.Profile, stradella.DefaultVoicing(), "default")
	mapper := loadKeymap(cfg.Voicing.Keymap, voicing)

	s.queue = midi.NewQueue(cfg.MIDI.QueueSize, cfg.MIDI.Overflow)
	s.tracker = stradella.NewTracker(s.queue, cfg.MIDI.Channel, voicing)
	s.pointer = input.NewPointer(cfg.Pointer)
	s.engine = expression.NewEngine(cfg.Expression, s.pointer, s.queue)
	s.surface = surface.New(cfg.Surface, mapper, s.tracker, s.engine)
	s.engine.OnDirectionChange(s.surface.DirectionChanged)

	outputs, err := openOutputs(cfg.MIDI, s.session)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare midi output: %w", err)
	}
	s.outputs = outputs
	s.relay = relay.New(s.queue, s.outputs, cfg.Stradella.RelayRate, s.session)
	return s, nil
}

// watchConfig reloads profile and keymap when their files change.
// New voicing applies to subsequent presses only, held notes are released as they were played.
func (s *service) watchConfig(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	profilePath, _ := filepath.Abs(s.cfg.Voicing.Profile)
	for path := range keymap.Watch(ctx, 200*time.Millisecond, s.cfg.Voicing.Profile, s.cfg.Voicing.Keymap) {
		voicing := s.tracker.Voicing()
		if path == profilePath {
			voicing = loadVoicing(s.cfg.Voicing.Profile, voicing, "previous")
			s.tracker.SetVoicing(voicing)
		}
		s.surface.SetMapper(loadKeymap(s.cfg.Voicing.Keymap, voicing))
	}
	log.Info("Config watcher stopped", logger.Debug)
}

// handleDevice routes events of a single input device into the surface and the pointer.
func (s *service) handleDevice(ctx context.Context, wg *sync.WaitGroup, d input.Device, grab bool) {
	defer wg.Done()

	var events <-chan input.InputEvent
	var err error

	appearedAt := time.Now()
	for {
		events, err = d.ProcessEvents(ctx, grab)
		if err == nil {
			break
		}
		if time.Since(appearedAt) > time.Second*5 {
			log.Info(fmt.Sprintf("failed to open device on time, giving up: %s", err), zap.String("device", d.Name), logger.Warning)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Millisecond * 100):
		}
	}

	log.Info("Device connected", zap.String("device", d.Name), logger.Info)
	for ie := range events {
		switch ie.Event.Type {
		case evdev.EV_KEY:
			if !s.surface.HandleKey(ie.Source.Event(), ie.Event.Code, ie.Event.Value) && ie.Event.Value == 1 {
				log.Info(fmt.Sprintf("key %s not assigned", keymap.KeyName(ie.Event.Code)), zap.String("device", d.Name), logger.Debug)
			}
		case evdev.EV_REL, evdev.EV_ABS:
			s.pointer.HandleEvent(ie.Event, ie.Axes)
		}
	}
	log.Info("Device disconnected", zap.String("device", d.Name), logger.Info)
}

// runManager is the main program process, before exiting from that function it ensures that
// all spawned goroutines are done and pending midi events are flushed.
func (s *service) runManager(ctx context.Context, grab bool) error {
	wg := sync.WaitGroup{}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	relayDone := make(chan error, 1)
	go func() {
		err := s.relay.Run(relayCtx)
		relayDone <- err
		if err != nil {
			log.Info(fmt.Sprintf("midi relay failed: %s", err), logger.Error)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.engine.Run(ctx)
	}()

	if s.cfg.Voicing.Watch {
		wg.Add(1)
		go s.watchConfig(ctx, &wg)
	}

	log.Info("Run manager", zap.String("session", s.session.String()), logger.Debug)
	for d := range input.MonitorNewDevices(ctx, s.cfg.Stradella.DiscoveryRate) {
		wg.Add(1)
		go s.handleDevice(ctx, &wg, d, grab)
	}

	wg.Wait()

	// every producer is done, silence what is still held and let the relay flush it
	s.surface.Panic()
	cancelRelay()
	err := <-relayDone

	stats := s.relay.Stats()
	log.Info(
		fmt.Sprintf("Exit manager, %d events sent, %d note-ons, %d dropped", stats.Events, stats.NoteOns, stats.Dropped),
		zap.String("session", stats.Session.String()), logger.Debug,
	)
	return err
}
