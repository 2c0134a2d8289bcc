package reader

import (
	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/saturate"
)

// DefaultHop is the synthesis hop of the stretcher. It deliberately does
// not divide the block size, so hops are buffered across blocks.
const DefaultHop = 96

// Stretch changes the playback duration of a sample without changing its
// pitch. It overlap-adds triangular-windowed grains of 2*hop samples: grains
// are read from the source every hop/ratio samples and written to the
// output every hop samples. The windows of neighbouring grains sum to one,
// so a ratio of one reproduces the source exactly.
type Stretch struct {
	src []int16
	hop int
	// step is the analysis hop in Q16.16.
	step int64
	// total is the number of genuine output samples.
	total int

	grain   int
	acc     []int32
	ready   []int16
	readPos int
	emitted int
}

// NewStretch returns a stretcher over src. Ratio is the duration factor in
// Q16.16, saturate.UnityGain keeps the original length and twice that
// doubles it. Hop values below one use DefaultHop.
func NewStretch(src []int16, ratio int32, hop int) *Stretch {
	if hop < 1 {
		hop = DefaultHop
	}
	if ratio < 1 {
		ratio = saturate.UnityGain
	}
	s := &Stretch{
		src:   src,
		hop:   hop,
		step:  (int64(hop) << 32) / int64(ratio),
		total: int((int64(len(src)) * int64(ratio)) >> 16),
		acc:   make([]int32, 2*hop),
		ready: make([]int16, hop),
	}
	s.Reset()
	return s
}

// Reset implements Reader.
func (s *Stretch) Reset() {
	for i := range s.acc {
		s.acc[i] = 0
	}
	s.emitted = 0
	s.readPos = s.hop
	// the grain before the first one supplies the fade-in half of the
	// overlap for the first hop.
	s.grain = -1
	s.overlap()
	copy(s.acc, s.acc[s.hop:])
	for i := s.hop; i < len(s.acc); i++ {
		s.acc[i] = 0
	}
	s.grain = 0
}

// HasData implements Reader.
func (s *Stretch) HasData() bool {
	return s.emitted < s.total
}

// ReadSamples implements Reader.
func (s *Stretch) ReadSamples(out *block.Block) int {
	if !s.HasData() {
		block.Assert(false, "stretch reader read after exhaustion")
		return 0
	}
	n := s.total - s.emitted
	if n > block.Size {
		n = block.Size
	}
	for i := 0; i < n; {
		if s.readPos == s.hop {
			s.next()
		}
		c := copy(out[i:n], s.ready[s.readPos:])
		s.readPos += c
		i += c
	}
	pad(out, n)
	s.emitted += n
	return n
}

// next adds the current grain and finalizes one hop of output.
func (s *Stretch) next() {
	s.overlap()
	for i := 0; i < s.hop; i++ {
		s.ready[i] = saturate.Int16(s.acc[i] / int32(s.hop))
	}
	copy(s.acc, s.acc[s.hop:])
	for i := s.hop; i < len(s.acc); i++ {
		s.acc[i] = 0
	}
	s.readPos = 0
	s.grain++
}

// overlap adds the windowed grain at the current grain index to acc.
func (s *Stretch) overlap() {
	start := int((int64(s.grain) * s.step) >> 16)
	for j := range s.acc {
		w := j
		if j >= s.hop {
			w = 2*s.hop - j
		}
		k := start + j
		if k < 0 || k >= len(s.src) {
			continue
		}
		s.acc[j] += int32(s.src[k]) * int32(w)
	}
}
