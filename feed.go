package sampler

import (
	"github.com/dudk/sampler/reader"
)

// Feed plays blocks prepared by a Prefetcher on a background goroutine. It
// never touches the underlying reader; a missing block means the
// background fell behind and the output is silent for that period.
type Feed struct {
	Stream
	prefetcher *reader.Prefetcher
	underruns  uint64
}

// NewFeed returns a node that transmits the blocks of f.
func NewFeed(f *reader.Prefetcher) *Feed {
	return &Feed{
		Stream:     newStream(0, 1),
		prefetcher: f,
	}
}

// Trigger restarts the stream. The reader is reset on the background
// goroutine.
func (f *Feed) Trigger() {
	f.prefetcher.Reset()
}

// Stop ends the stream at the next period. The prefetcher drops what it
// already read on the background goroutine.
func (f *Feed) Stop() {
	f.prefetcher.Stop()
}

// Underruns returns how many periods had no block ready before the stream
// was exhausted. It must be called from the audio context.
func (f *Feed) Underruns() uint64 {
	return f.underruns
}

// Update implements Node.
func (f *Feed) Update() {
	h := f.prefetcher.Take()
	if h.IsNil() {
		if !f.prefetcher.Exhausted() {
			f.underruns++
		}
		return
	}
	f.Transmit(h, 0)
}
