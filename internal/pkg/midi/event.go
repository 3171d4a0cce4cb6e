package midi

import (
	"fmt"
)

const (
	// message types
	NoteOff          uint8 = 0b1000 << 4
	NoteOn           uint8 = 0b1001 << 4
	ControlChange    uint8 = 0b1011 << 4
	ProgramChange    uint8 = 0b1100 << 4
	PitchWheelChange uint8 = 0b1110 << 4

	// ControlChange
	Modulation          uint8 = 0b00000001
	Expression          uint8 = 0b00001011
	AllNotesOff         uint8 = 0b01111011
	AllSoundOff         uint8 = 0b01111000
	ResetAllControllers uint8 = 0b01111001

	Channels = 16
)

type Event []byte

func (e Event) String() string {
	if len(e) == 0 {
		return fmt.Sprintf("Warning: empty Midi event, it should be not emitted")
	}
	channel := e[0]&0b1111 + 1
	switch x := e[0] & 0b11110000; x {
	case NoteOff:
		return fmt.Sprintf("Note Off: %s (channel: %2d, velocity: %3d)", noteToString(e[1]), channel, e[2])
	case NoteOn:
		return fmt.Sprintf("Note On : %s (channel: %2d, velocity: %3d)", noteToString(e[1]), channel, e[2])
	case ControlChange:
		var value string
		if len(e) == 3 {
			value = fmt.Sprintf("%3d", e[2])
		} else {
			value = "---"
		}
		return fmt.Sprintf("Control Change: %3d, value: %s (channel: %2d)", e[1], value, channel)
	case ProgramChange:
		return fmt.Sprintf("Program Change: %3d (channel: %2d)", e[1], channel)
	default:
		msg := "Oof, unexpected event format: "
		for _, v := range e {
			msg += fmt.Sprintf("0x%02x ", v)
		}
		return msg
	}
}

// Type returns message type without channel nibble.
func (e Event) Type() uint8 {
	if len(e) == 0 {
		return 0
	}
	return e[0] & 0b11110000
}

// NoteEvent builds note message, note and velocity outside of 0-127 are clamped.
func NoteEvent(messageType, channel uint8, note, velocity int) Event {
	return Event{messageType | channel&0b1111, ClampData(note), ClampData(velocity)}
}

func ControlChangeEvent(channel, function uint8, value int) Event {
	return Event{ControlChange | channel&0b1111, function, ClampData(value)}
}

// PanicEvents returns all-notes-off and all-sound-off for every midi channel.
func PanicEvents() []Event {
	var events = make([]Event, 0, Channels*2)
	for ch := uint8(0); ch < Channels; ch++ {
		events = append(events,
			ControlChangeEvent(ch, AllNotesOff, 0),
			ControlChangeEvent(ch, AllSoundOff, 0),
		)
	}
	return events
}
