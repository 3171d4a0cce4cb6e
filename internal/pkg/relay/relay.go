package relay

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gethiox/stradella/internal/pkg/logger"
	"github.com/gethiox/stradella/internal/pkg/midi"
	"github.com/gethiox/stradella/internal/pkg/midi/driver"
	"github.com/google/uuid"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Stats are counters of the relay since start.
type Stats struct {
	Session uuid.UUID
	Events  uint64 // delivered messages
	NoteOns uint64
	Errors  uint64
	Dropped uint64 // queue overflow
	Pending int
}

// Relay periodically moves pending messages from the queue to the output.
// It is the only consumer of the queue.
type Relay struct {
	queue   *midi.Queue
	out     driver.MIDIOut
	rate    time.Duration
	session uuid.UUID

	events  atomic.Uint64
	noteOns atomic.Uint64
	errors  atomic.Uint64
}

func New(queue *midi.Queue, out driver.MIDIOut, rate time.Duration, session uuid.UUID) *Relay {
	if rate <= 0 {
		rate = time.Millisecond
	}
	return &Relay{
		queue:   queue,
		out:     out,
		rate:    rate,
		session: session,
	}
}

// Run opens the output and relays messages until context is done.
// Messages pending at that moment are flushed before the output gets closed.
func (r *Relay) Run(ctx context.Context) error {
	err := r.out.Open()
	if err != nil {
		return fmt.Errorf("failed to open midi output: %w", err)
	}
	log.Info(fmt.Sprintf("Relaying midi events to %s", r.out.Name()), zap.String("session", r.session.String()), logger.Info)

	ticker := time.NewTicker(r.rate)
	defer ticker.Stop()

root:
	for {
		select {
		case <-ctx.Done():
			break root
		case <-ticker.C:
			r.Flush()
		}
	}

	r.Flush()
	err = r.out.Close()
	if err != nil {
		log.Info(fmt.Sprintf("closing midi output failed: %s", err), logger.Warning)
	}
	log.Info("Processing output midi events stopped", zap.Uint64("events", r.events.Load()), logger.Debug)
	return nil
}

// Flush delivers everything that is pending right now, returns number of delivered messages.
func (r *Relay) Flush() int {
	var delivered int
	for _, ev := range r.queue.DrainAll() {
		err := r.out.Send(ev)
		if err != nil {
			r.errors.Add(1)
			log.Info(fmt.Sprintf("failed to send %s: %s", gomidi.Message(ev).String(), err), logger.Error)
			continue
		}
		delivered++
		r.events.Add(1)
		if ev.Type() == midi.NoteOn {
			r.noteOns.Add(1)
		}
	}
	return delivered
}

func (r *Relay) Stats() Stats {
	return Stats{
		Session: r.session,
		Events:  r.events.Load(),
		NoteOns: r.noteOns.Load(),
		Errors:  r.errors.Load(),
		Dropped: r.queue.Dropped(),
		Pending: r.queue.Len(),
	}
}
