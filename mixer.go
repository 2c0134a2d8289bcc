package sampler

import (
	"sync/atomic"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/saturate"
)

// Mixer sums its inputs into one output, each scaled by its own Q16.16
// gain. Missing inputs are silent; when every input is missing nothing is
// transmitted.
type Mixer struct {
	Stream
	gains []atomic.Int32
}

// NewMixer returns a mixer with the given number of inputs at unity gain.
func NewMixer(inputs int) *Mixer {
	m := &Mixer{
		Stream: newStream(inputs, 1),
		gains:  make([]atomic.Int32, inputs),
	}
	for i := range m.gains {
		m.gains[i].Store(saturate.UnityGain)
	}
	return m
}

// SetGain changes the gain of an input from the next period. It is safe to
// call from any goroutine.
func (m *Mixer) SetGain(input int, gain int32) {
	if input < 0 || input >= len(m.gains) {
		return
	}
	m.gains[input].Store(gain)
}

// Update implements Node.
func (m *Mixer) Update() {
	out := m.first()
	if out.IsNil() {
		return
	}
	sum := m.Samples(out)
	for i := range m.gains {
		h := m.ReceiveReadOnly(i)
		if h.IsNil() {
			continue
		}
		gain := m.gains[i].Load()
		in := m.Samples(h)
		for j := range sum {
			sum[j] = saturate.Add16(sum[j], saturate.Mul16(in[j], gain))
		}
		m.Release(h)
	}
	m.Transmit(out, 0)
}

// first takes the first pending input as the writable accumulator and
// applies its gain.
func (m *Mixer) first() block.Handle {
	for i := range m.gains {
		if m.inputs[i].IsNil() {
			continue
		}
		out := m.ReceiveWritable(i)
		if out.IsNil() {
			// no block for the copy, drop the whole period
			m.flush()
			return block.Nil
		}
		if gain := m.gains[i].Load(); gain != saturate.UnityGain {
			b := m.Samples(out)
			for j := range b {
				b[j] = saturate.Mul16(b[j], gain)
			}
		}
		return out
	}
	return block.Nil
}
