package block

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

// MaxCapacity is the largest number of blocks a pool can hold.
const MaxCapacity = 1<<16 - 1

// Pool is a fixed-capacity set of blocks with per-block reference counts.
// It is the only source of new blocks in the graph.
type Pool struct {
	blocks []Block
	refs   []atomic.Int32
	gens   []atomic.Uint32
	// free has a set bit for every unleased slot.
	free []atomic.Uint64

	used       atomic.Int32
	maxUsed    atomic.Int32
	exhausted  atomic.Uint64
	violations atomic.Uint64
}

// NewPool pre-allocates capacity blocks.
func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	words := (capacity + 63) / 64
	p := &Pool{
		blocks: make([]Block, capacity),
		refs:   make([]atomic.Int32, capacity),
		gens:   make([]atomic.Uint32, capacity),
		free:   make([]atomic.Uint64, words),
	}
	for w := range p.free {
		n := capacity - w*64
		if n >= 64 {
			p.free[w].Store(^uint64(0))
		} else {
			p.free[w].Store(uint64(1)<<uint(n) - 1)
		}
	}
	return p, nil
}

// Allocate leases a free block with reference count one. Its contents are
// whatever the previous lease left there. ErrExhausted is returned when no
// block is free.
func (p *Pool) Allocate() (Handle, error) {
	for w := range p.free {
		for {
			mask := p.free[w].Load()
			if mask == 0 {
				break
			}
			bit := bits.TrailingZeros64(mask)
			if !p.free[w].CompareAndSwap(mask, mask&^(uint64(1)<<uint(bit))) {
				continue
			}
			slot := w*64 + bit
			gen := p.gens[slot].Add(1)
			p.refs[slot].Store(1)
			p.account()
			return newHandle(slot, gen), nil
		}
	}
	p.exhausted.Add(1)
	return Nil, ErrExhausted
}

// Retain adds a reference to the block, used when it is fanned out to more
// than one consumer.
func (p *Pool) Retain(h Handle) {
	slot, ok := p.resolve(h)
	if !ok {
		return
	}
	for {
		n := p.refs[slot].Load()
		if n <= 0 {
			p.violation("retain of released block %d", slot)
			return
		}
		if p.refs[slot].CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Release drops a reference. The block returns to the free set when the
// last reference is gone.
func (p *Pool) Release(h Handle) {
	slot, ok := p.resolve(h)
	if !ok {
		return
	}
	for {
		n := p.refs[slot].Load()
		if n <= 0 {
			p.violation("release of released block %d", slot)
			return
		}
		if !p.refs[slot].CompareAndSwap(n, n-1) {
			continue
		}
		if n == 1 {
			p.used.Add(-1)
			p.free[slot/64].Or(uint64(1) << uint(slot%64))
		}
		return
	}
}

// Samples returns the storage of a leased block or nil if the handle does
// not resolve.
func (p *Pool) Samples(h Handle) *Block {
	slot, ok := p.resolve(h)
	if !ok {
		return nil
	}
	if p.refs[slot].Load() <= 0 {
		p.violation("access to released block %d", slot)
		return nil
	}
	return &p.blocks[slot]
}

// Refs returns the current reference count of the block.
func (p *Pool) Refs(h Handle) int {
	slot, ok := p.resolve(h)
	if !ok {
		return 0
	}
	return int(p.refs[slot].Load())
}

// Writable returns true if the caller holds the only reference and may
// mutate the block in place.
func (p *Pool) Writable(h Handle) bool {
	return p.Refs(h) == 1
}

// Capacity returns the number of blocks in the pool.
func (p *Pool) Capacity() int {
	return len(p.blocks)
}

// Usage returns the number of leased blocks.
func (p *Pool) Usage() int {
	return int(p.used.Load())
}

// MaxUsage returns the highest Usage observed since the pool was created or
// ResetMaxUsage was called.
func (p *Pool) MaxUsage() int {
	return int(p.maxUsed.Load())
}

// ResetMaxUsage sets MaxUsage to the current Usage.
func (p *Pool) ResetMaxUsage() {
	p.maxUsed.Store(p.used.Load())
}

// Exhausted returns how many allocations failed.
func (p *Pool) Exhausted() uint64 {
	return p.exhausted.Load()
}

// Violations returns how many contract violations were ignored.
func (p *Pool) Violations() uint64 {
	return p.violations.Load()
}

func (p *Pool) account() {
	used := p.used.Add(1)
	for {
		max := p.maxUsed.Load()
		if used <= max || p.maxUsed.CompareAndSwap(max, used) {
			return
		}
	}
}

// resolve maps the handle to its slot if the lease is still current.
func (p *Pool) resolve(h Handle) (int, bool) {
	if h.IsNil() {
		return 0, false
	}
	slot := h.slot()
	if slot >= len(p.blocks) {
		p.violation("handle slot %d out of range", slot)
		return 0, false
	}
	if p.gens[slot].Load()&0xffff != h.gen() {
		p.violation("stale handle for block %d", slot)
		return 0, false
	}
	return slot, true
}

func (p *Pool) violation(format string, args ...interface{}) {
	p.violations.Add(1)
	Assert(false, format, args...)
}
