package midi

import (
	"errors"
	"sync"
)

// ErrClosed is returned by a closed transport.
var ErrClosed = errors.New("midi transport closed")

type (
	// Transport is the USB-MIDI collaborator. All methods are called from
	// the background goroutine.
	Transport interface {
		Init() error
		// Service runs the transport housekeeping, like USB polling.
		Service() error
		// ReadPacket returns the next received packet, if any.
		ReadPacket() (Packet, bool)
		WritePacket(Packet) error
	}

	// Loopback is an in-process transport: written packets are read back
	// in order. The host binary and tests inject events through it.
	Loopback struct {
		m      sync.Mutex
		queue  []Packet
		closed bool
	}
)

// Init implements Transport.
func (l *Loopback) Init() error {
	l.m.Lock()
	defer l.m.Unlock()
	l.closed = false
	return nil
}

// Service implements Transport.
func (l *Loopback) Service() error {
	l.m.Lock()
	defer l.m.Unlock()
	if l.closed {
		return ErrClosed
	}
	return nil
}

// ReadPacket implements Transport.
func (l *Loopback) ReadPacket() (Packet, bool) {
	l.m.Lock()
	defer l.m.Unlock()
	if len(l.queue) == 0 {
		return Packet{}, false
	}
	p := l.queue[0]
	l.queue = l.queue[1:]
	return p, true
}

// WritePacket implements Transport.
func (l *Loopback) WritePacket(p Packet) error {
	l.m.Lock()
	defer l.m.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, p)
	return nil
}

// Send encodes and writes e.
func (l *Loopback) Send(e Event) error {
	return l.WritePacket(Encode(e))
}

// Close makes further Service and WritePacket calls fail.
func (l *Loopback) Close() {
	l.m.Lock()
	defer l.m.Unlock()
	l.closed = true
}
