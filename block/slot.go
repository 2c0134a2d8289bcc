package block

import "sync/atomic"

// Slot hands a single block from one goroutine to another without locks.
// The producer owns the reference until Put succeeds, after which the
// consumer that takes it owns it.
type Slot struct {
	h atomic.Uint32
}

// Put publishes the block if the slot is empty. It returns false when the
// previous block was not taken yet; the caller keeps its reference then.
func (s *Slot) Put(h Handle) bool {
	if h.IsNil() {
		return false
	}
	return s.h.CompareAndSwap(uint32(Nil), uint32(h))
}

// Take removes and returns the published block, Nil if there is none.
func (s *Slot) Take() Handle {
	return Handle(s.h.Swap(uint32(Nil)))
}

// Full returns true if a block is waiting to be taken.
func (s *Slot) Full() bool {
	return s.h.Load() != uint32(Nil)
}

// Drain releases a block left in the slot.
func (s *Slot) Drain(p *Pool) {
	if h := s.Take(); !h.IsNil() {
		p.Release(h)
	}
}

// Queue is a single-producer single-consumer ring of handles. Push and Pop
// never block; Push fails when the ring is full and Pop when it is empty.
type Queue struct {
	ring []atomic.Uint32
	mask uint32
	head atomic.Uint32 // next slot to pop
	tail atomic.Uint32 // next slot to push
}

// NewQueue returns a ring holding at least size handles. The size is rounded
// up to a power of two.
func NewQueue(size int) *Queue {
	n := 1
	for n < size {
		n <<= 1
	}
	return &Queue{
		ring: make([]atomic.Uint32, n),
		mask: uint32(n - 1),
	}
}

// Push appends the handle. Ownership moves to the queue on success.
func (q *Queue) Push(h Handle) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint32(len(q.ring)) {
		return false
	}
	q.ring[tail&q.mask].Store(uint32(h))
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest handle. The second result is false when the queue
// is empty.
func (q *Queue) Pop() (Handle, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Nil, false
	}
	h := Handle(q.ring[head&q.mask].Load())
	q.head.Store(head + 1)
	return h, true
}

// Len returns the number of queued handles.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Drain releases every queued block.
func (q *Queue) Drain(p *Pool) {
	for {
		h, ok := q.Pop()
		if !ok {
			return
		}
		p.Release(h)
	}
}
