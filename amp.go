package sampler

import (
	"sync/atomic"

	"github.com/dudk/sampler/saturate"
)

// Amp scales its input by a Q16.16 gain with saturation.
type Amp struct {
	Stream
	gain atomic.Int32
}

// NewAmp returns an amplifier with the given Q16.16 gain.
func NewAmp(gain int32) *Amp {
	a := &Amp{Stream: newStream(1, 1)}
	a.gain.Store(gain)
	return a
}

// SetGain changes the gain from the next period. It is safe to call from
// any goroutine.
func (a *Amp) SetGain(gain int32) {
	a.gain.Store(gain)
}

// Update implements Node.
func (a *Amp) Update() {
	gain := a.gain.Load()
	switch gain {
	case saturate.UnityGain:
		a.Transmit(a.ReceiveReadOnly(0), 0)
		return
	case 0:
		// silence is the absence of a block
		if h := a.ReceiveReadOnly(0); !h.IsNil() {
			a.Release(h)
		}
		return
	}
	h := a.ReceiveWritable(0)
	if h.IsNil() {
		return
	}
	b := a.Samples(h)
	for i := range b {
		b[i] = saturate.Mul16(b[i], gain)
	}
	a.Transmit(h, 0)
}
