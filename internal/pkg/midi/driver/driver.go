package driver

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotOpen = errors.New("port is not open")

// MIDIOut is a destination of raw midi messages.
type MIDIOut interface {
	Name() string
	Open() error
	Close() error
	Send(data []byte) error
}

// Outputs fans out every message to all ports, errors are joined.
type Outputs []MIDIOut

func (o Outputs) Name() string {
	names := make([]string, 0, len(o))
	for _, out := range o {
		names = append(names, out.Name())
	}
	return strings.Join(names, ", ")
}

func (o Outputs) Open() error {
	for i, out := range o {
		err := out.Open()
		if err != nil {
			for _, opened := range o[:i] {
				_ = opened.Close()
			}
			return fmt.Errorf("failed to open \"%s\": %w", out.Name(), err)
		}
	}
	return nil
}

func (o Outputs) Close() error {
	var errs []string
	for _, out := range o {
		err := out.Close()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", out.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close outputs: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (o Outputs) Send(data []byte) error {
	var errs []string
	for _, out := range o {
		err := out.Send(data)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", out.Name(), err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("send failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
