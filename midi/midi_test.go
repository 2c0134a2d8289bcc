package midi_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/sampler/midi"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		description string
		packet      []byte
		expected    midi.Event
	}{
		{
			description: "note on",
			packet:      []byte{0x09, 0x92, 36, 100},
			expected:    midi.Event{Kind: midi.NoteOn, Channel: 2, Note: 36, Velocity: 100},
		},
		{
			description: "note on zero velocity",
			packet:      []byte{0x19, 0x90, 38, 0},
			expected:    midi.Event{Cable: 1, Kind: midi.NoteOff, Note: 38},
		},
		{
			description: "note off",
			packet:      []byte{0x08, 0x80, 40, 64},
			expected:    midi.Event{Kind: midi.NoteOff, Note: 40, Velocity: 64},
		},
		{
			description: "control change",
			packet:      []byte{0x0b, 0xb0, 7, 127},
			expected:    midi.Event{Kind: midi.ControlChange, Note: 7, Velocity: 127},
		},
		{
			description: "system exclusive",
			packet:      []byte{0x04, 0xf0, 0x7e, 0x7f, 0xff},
			expected:    midi.Event{Kind: midi.Other, Note: 0x7e, Velocity: 0x7f},
		},
	}
	for _, test := range tests {
		e, err := midi.Decode(test.packet)
		require.NoError(t, err, test.description)
		assert.Equal(t, test.expected, e, test.description)
	}

	_, err := midi.Decode([]byte{0x09, 0x90, 36})
	assert.ErrorIs(t, err, midi.ErrShortPacket)
}

func TestEncode(t *testing.T) {
	events := []midi.Event{
		{Cable: 3, Kind: midi.NoteOn, Channel: 9, Note: 36, Velocity: 1},
		{Kind: midi.NoteOff, Channel: 15, Note: 127, Velocity: 0},
		{Kind: midi.ControlChange, Note: 64, Velocity: 127},
	}
	for _, e := range events {
		p := midi.Encode(e)
		assert.Equal(t, e, p.Event())
	}
	assert.Equal(t, midi.Packet{}, midi.Encode(midi.Event{Kind: midi.Other}))
}

type trigger struct {
	triggered atomic.Int32
	stopped   atomic.Int32
}

func (t *trigger) Trigger() { t.triggered.Add(1) }

func (t *trigger) Stop() { t.stopped.Add(1) }

type oneShot struct {
	triggered int
}

func (t *oneShot) Trigger() { t.triggered++ }

func TestRouterHandle(t *testing.T) {
	r := midi.NewRouter()
	gated, shot := &trigger{}, &oneShot{}
	r.Route(36, gated, true)
	r.Route(38, shot, true)

	assert.True(t, r.Handle(midi.Event{Kind: midi.NoteOn, Note: 36, Velocity: 1}))
	assert.True(t, r.Handle(midi.Event{Kind: midi.NoteOff, Note: 36}))
	assert.True(t, r.Handle(midi.Event{Kind: midi.NoteOn, Note: 38, Velocity: 1}))
	// one shots ignore note off
	assert.False(t, r.Handle(midi.Event{Kind: midi.NoteOff, Note: 38}))
	assert.False(t, r.Handle(midi.Event{Kind: midi.NoteOn, Note: 40, Velocity: 1}))
	assert.False(t, r.Handle(midi.Event{Kind: midi.ControlChange, Note: 36}))

	assert.Equal(t, int32(1), gated.triggered.Load())
	assert.Equal(t, int32(1), gated.stopped.Load())
	assert.Equal(t, 1, shot.triggered)
	assert.Equal(t, uint64(3), r.Handled())
	assert.Equal(t, uint64(1), r.Unrouted())

	r.Route(36, gated, false)
	assert.False(t, r.Handle(midi.Event{Kind: midi.NoteOff, Note: 36}))
	r.Unroute(36)
	assert.False(t, r.Handle(midi.Event{Kind: midi.NoteOn, Note: 36, Velocity: 1}))
	assert.Equal(t, int32(1), gated.triggered.Load())
}

func TestRouterServe(t *testing.T) {
	r := midi.NewRouter(midi.WithInterval(100 * time.Microsecond))
	tr := &trigger{}
	r.Route(36, tr, true)

	var l midi.Loopback
	ctx, cancel := context.WithCancel(context.Background())
	errc := r.Serve(ctx, &l)

	require.NoError(t, l.Send(midi.Event{Kind: midi.NoteOn, Note: 36, Velocity: 90}))
	require.NoError(t, l.WritePacket(midi.Packet{0x0f, 0xf8}))
	require.NoError(t, l.Send(midi.Event{Kind: midi.NoteOff, Note: 36}))
	assert.Eventually(t, func() bool {
		return tr.stopped.Load() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), tr.triggered.Load())
	assert.Equal(t, uint64(1), r.Ignored())

	cancel()
	for err := range errc {
		assert.NoError(t, err)
	}
}

func TestRouterServeClosed(t *testing.T) {
	r := midi.NewRouter(midi.WithInterval(100 * time.Microsecond))
	var l midi.Loopback
	errc := r.Serve(context.Background(), &l)
	l.Close()
	err, ok := <-errc
	assert.True(t, ok)
	assert.ErrorIs(t, err, midi.ErrClosed)
	_, ok = <-errc
	assert.False(t, ok)
}
