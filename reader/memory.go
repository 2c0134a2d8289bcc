package reader

import (
	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/copier"
)

// Memory reads samples from a slice, typically a generated sample table.
type Memory struct {
	samples []int16
	pos     int
	copier  copier.Copier
}

// NewMemory returns a reader over samples. If c is nil the samples are
// copied sequentially.
func NewMemory(samples []int16, c copier.Copier) *Memory {
	if c == nil {
		c = copier.Sequential{}
	}
	return &Memory{
		samples: samples,
		copier:  c,
	}
}

// Reset implements Reader.
func (m *Memory) Reset() {
	m.pos = 0
}

// HasData implements Reader.
func (m *Memory) HasData() bool {
	return m.pos < len(m.samples)
}

// ReadSamples implements Reader.
func (m *Memory) ReadSamples(out *block.Block) int {
	if !m.HasData() {
		block.Assert(false, "memory reader read after exhaustion")
		return 0
	}
	n := len(m.samples) - m.pos
	if n > block.Size {
		n = block.Size
	}
	m.copier.Copy(out[:], m.samples[m.pos:], n)
	pad(out, n)
	m.pos += n
	return n
}

// Len returns the number of genuine samples.
func (m *Memory) Len() int {
	return len(m.samples)
}
