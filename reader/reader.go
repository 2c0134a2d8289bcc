/*
Package reader provides streaming sample sources for the audio graph.

A Reader is a restartable cursor over a sequence of samples. Every call to
ReadSamples fills exactly one block; when fewer genuine samples remain the
rest of the block is silence and the returned count tells how many samples
were genuine. HasData turns false once every genuine sample was produced.

Readers backed by memory never block and may be read from the audio path
directly. Readers backed by storage may block and must be wrapped with a
Prefetcher, which reads them on a background goroutine and hands finished
blocks to the audio path through a lock-free slot.
*/
package reader

import (
	"github.com/dudk/sampler/block"
)

// Reader is a restartable source of sample blocks.
type Reader interface {
	// Reset moves the cursor to the start of the sequence.
	Reset()
	// HasData returns true while genuine samples remain.
	HasData() bool
	// ReadSamples fills out with one block and returns the number of
	// genuine samples in it. Calling it when HasData is false leaves out
	// untouched and returns 0.
	ReadSamples(out *block.Block) int
}

// Logger is the logging interface used by background readers.
type Logger interface {
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
}

type silentLogger struct{}

func (silentLogger) Debug(...interface{}) {}

func (silentLogger) Info(...interface{}) {}

func (silentLogger) Warn(...interface{}) {}

// pad silences out from n on.
func pad(out *block.Block, n int) {
	for i := n; i < block.Size; i++ {
		out[i] = 0
	}
}
