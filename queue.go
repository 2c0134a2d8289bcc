package sampler

import (
	"sync/atomic"

	"github.com/dudk/sampler/block"
)

// Queue hands the blocks it receives to a background consumer, for example
// a recorder writing them to storage. Blocks that do not fit are dropped
// and counted.
type Queue struct {
	Stream
	ring     *block.Queue
	enabled  atomic.Bool
	overruns atomic.Uint64
	silent   atomic.Uint64
}

// NewQueue returns a record queue holding up to size blocks. It starts
// enabled.
func NewQueue(size int) *Queue {
	q := &Queue{
		Stream: newStream(1, 0),
		ring:   block.NewQueue(size),
	}
	q.enabled.Store(true)
	return q
}

// Enable starts or stops queueing. Safe to call from any goroutine.
func (q *Queue) Enable(on bool) {
	q.enabled.Store(on)
}

// Update implements Node.
func (q *Queue) Update() {
	h := q.ReceiveReadOnly(0)
	if !q.enabled.Load() {
		if !h.IsNil() {
			q.Release(h)
		}
		return
	}
	if h.IsNil() {
		// a silent period is queued as Nil to keep the timeline
		q.silent.Add(1)
	}
	if !q.ring.Push(h) {
		q.overruns.Add(1)
		if !h.IsNil() {
			q.Release(h)
		}
	}
}

// Read pops every queued period and calls fn with its samples, nil for a
// silent period. It runs on the consumer goroutine and releases the blocks
// after fn returns. It returns the number of periods read.
func (q *Queue) Read(fn func(*block.Block)) int {
	n := 0
	for {
		h, ok := q.ring.Pop()
		if !ok {
			return n
		}
		if h.IsNil() {
			fn(nil)
		} else {
			fn(q.pool.Samples(h))
			q.pool.Release(h)
		}
		n++
	}
}

// Len returns the number of queued periods.
func (q *Queue) Len() int {
	return q.ring.Len()
}

// Overruns returns how many periods were dropped because the consumer fell
// behind.
func (q *Queue) Overruns() uint64 {
	return q.overruns.Load()
}

// Silent returns how many silent periods were queued.
func (q *Queue) Silent() uint64 {
	return q.silent.Load()
}

// Close releases every queued block. It must not run concurrently with
// Read.
func (q *Queue) Close() {
	q.ring.Drain(q.pool)
}
