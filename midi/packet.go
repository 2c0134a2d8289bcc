// Package midi decodes USB-MIDI event packets and routes note events to
// sample triggers. The transport itself is a collaborator serviced on a
// background goroutine; no audio data flows through this package.
package midi

import (
	"errors"
	"fmt"
)

// PacketSize is the size of a USB-MIDI event packet.
const PacketSize = 4

// ErrShortPacket is returned when fewer than PacketSize bytes are decoded.
var ErrShortPacket = errors.New("short midi packet")

// Code index numbers this package interprets.
const (
	cinNoteOff       = 0x8
	cinNoteOn        = 0x9
	cinControlChange = 0xb
)

type (
	// Packet is a raw USB-MIDI event packet: cable number and code index
	// in the first byte, followed by up to three MIDI bytes.
	Packet [PacketSize]byte

	// Kind of an event.
	Kind uint8

	// Event is a decoded channel message.
	Event struct {
		Cable   uint8
		Kind    Kind
		Channel uint8
		// Note is the note number or the controller number.
		Note uint8
		// Velocity is the velocity or the controller value.
		Velocity uint8
	}
)

// Event kinds.
const (
	Other Kind = iota
	NoteOn
	NoteOff
	ControlChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note on"
	case NoteOff:
		return "note off"
	case ControlChange:
		return "control change"
	}
	return "other"
}

// Cable returns the virtual cable number.
func (p Packet) Cable() uint8 {
	return p[0] >> 4
}

// CIN returns the code index number.
func (p Packet) CIN() uint8 {
	return p[0] & 0x0f
}

// Decode parses the first packet in b. Note on with zero velocity is
// reported as note off.
func Decode(b []byte) (Event, error) {
	if len(b) < PacketSize {
		return Event{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	var p Packet
	copy(p[:], b)
	return p.Event(), nil
}

// Event returns the decoded message.
func (p Packet) Event() Event {
	e := Event{
		Cable:    p.Cable(),
		Channel:  p[1] & 0x0f,
		Note:     p[2] & 0x7f,
		Velocity: p[3] & 0x7f,
	}
	switch p.CIN() {
	case cinNoteOn:
		if e.Velocity == 0 {
			e.Kind = NoteOff
		} else {
			e.Kind = NoteOn
		}
	case cinNoteOff:
		e.Kind = NoteOff
	case cinControlChange:
		e.Kind = ControlChange
	default:
		e.Kind = Other
	}
	return e
}

// Encode returns the packet for e. Other events encode as an empty packet.
func Encode(e Event) Packet {
	var cin uint8
	switch e.Kind {
	case NoteOn:
		cin = cinNoteOn
	case NoteOff:
		cin = cinNoteOff
	case ControlChange:
		cin = cinControlChange
	default:
		return Packet{}
	}
	return Packet{
		e.Cable<<4 | cin,
		cin<<4 | e.Channel&0x0f,
		e.Note & 0x7f,
		e.Velocity & 0x7f,
	}
}
