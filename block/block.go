/*
Package block provides the fixed-size sample buffers moved through the audio
graph and the pool they are leased from.

Blocks are never referenced by pointer across the graph. Nodes pass Handle
values, which are slot indices into a Pool tagged with the generation of the
lease. A handle whose lease was released and reissued no longer resolves, so
stale handles are detected instead of silently aliasing another node's data.

All Pool operations are lock-free: allocation scans an atomic free bitmap and
reference counts are updated with compare-and-swap. They are safe to call
from the periodic audio context and from background goroutines at the same
time, and none of them ever blocks.
*/
package block

// Size is the number of samples in every block.
const Size = 128

// Block is a fixed-length buffer of signed 16-bit mono samples.
type Block [Size]int16

// Clear sets all samples to silence.
func (b *Block) Clear() {
	*b = Block{}
}

// Handle references a leased block. The zero value is Nil and references
// nothing.
//
// The low 16 bits hold the slot index plus one, the high 16 bits hold the
// lease generation.
type Handle uint32

// Nil is the handle that references no block.
const Nil Handle = 0

func newHandle(slot int, gen uint32) Handle {
	return Handle(uint32(gen&0xffff)<<16 | uint32(slot+1))
}

// IsNil returns true if handle references no block.
func (h Handle) IsNil() bool {
	return h == Nil
}

func (h Handle) slot() int {
	return int(h&0xffff) - 1
}

func (h Handle) gen() uint32 {
	return uint32(h >> 16)
}
