package sampler

import (
	"sync/atomic"

	"github.com/dudk/sampler/reader"
)

// Player streams a non-blocking Reader, such as an in-memory sample, into
// its single output. It is silent until triggered and stops when the
// reader is exhausted.
type Player struct {
	Stream
	reader  reader.Reader
	playing bool
	trigger atomic.Bool
	stop    atomic.Bool
	// stalls counts periods without output because the pool was exhausted.
	stalls atomic.Uint64
}

// NewPlayer returns a player over r.
func NewPlayer(r reader.Reader) *Player {
	return &Player{
		Stream: newStream(0, 1),
		reader: r,
	}
}

// Trigger restarts playback from the beginning at the next period. It is
// safe to call from any goroutine.
func (p *Player) Trigger() {
	p.trigger.Store(true)
}

// Stop silences the player at the next period. It is safe to call from any
// goroutine.
func (p *Player) Stop() {
	p.stop.Store(true)
}

// Playing returns true while the player produces output. It must be called
// from the audio context.
func (p *Player) Playing() bool {
	return p.playing
}

// Stalls returns how many periods were skipped because no block was free.
func (p *Player) Stalls() uint64 {
	return p.stalls.Load()
}

// Update implements Node.
func (p *Player) Update() {
	if p.stop.Swap(false) {
		p.playing = false
	}
	if p.trigger.Swap(false) {
		p.reader.Reset()
		p.playing = true
	}
	if !p.playing {
		return
	}
	if !p.reader.HasData() {
		p.playing = false
		return
	}
	h, ok := p.Allocate()
	if !ok {
		p.stalls.Add(1)
		return
	}
	p.reader.ReadSamples(p.Samples(h))
	p.Transmit(h, 0)
}
