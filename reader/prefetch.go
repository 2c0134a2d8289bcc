package reader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dudk/sampler/block"
)

const (
	requestNone int32 = iota
	requestReset
	requestStop
)

// DefaultInterval is how often the prefetcher checks whether the audio path
// took the last block.
const DefaultInterval = time.Millisecond

type (
	// Prefetcher reads a Reader on a background goroutine and publishes
	// one block at a time for the audio path. The audio path only calls
	// Take, Exhausted, Reset and Stop, none of which block.
	Prefetcher struct {
		reader   Reader
		pool     *block.Pool
		slot     block.Slot
		interval time.Duration
		log      Logger

		// req is the pending Reset or Stop request, the last one wins.
		req       atomic.Int32
		done      atomic.Bool
		starved   atomic.Uint64
		published atomic.Uint64
	}

	// PrefetchOption configures a Prefetcher.
	PrefetchOption func(*Prefetcher)

	// errReader is implemented by readers that can fail, like Storage.
	errReader interface {
		Err() error
	}
)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) PrefetchOption {
	return func(f *Prefetcher) {
		f.interval = d
	}
}

// WithLogger sets the logger. If this option is not provided, silent logger
// is used.
func WithLogger(l Logger) PrefetchOption {
	return func(f *Prefetcher) {
		f.log = l
	}
}

// WithIdle makes the prefetcher wait for the first Reset before reading,
// for streams that play only when triggered.
func WithIdle() PrefetchOption {
	return func(f *Prefetcher) {
		f.done.Store(true)
	}
}

// NewPrefetcher wraps r. Blocks are leased from p.
func NewPrefetcher(r Reader, p *block.Pool, options ...PrefetchOption) *Prefetcher {
	f := &Prefetcher{
		reader:   r,
		pool:     p,
		interval: DefaultInterval,
		log:      silentLogger{},
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Run starts the background loop. It stops when ctx is done or the wrapped
// reader fails; the returned channel yields the failure and is closed on
// return.
func (f *Prefetcher) Run(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		defer f.slot.Drain(f.pool)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			if err := f.fill(); err != nil {
				f.log.Warn("prefetch stopped: ", err)
				errc <- err
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return errc
}

// fill restarts the reader if requested and publishes the next block if
// the slot is free.
func (f *Prefetcher) fill() error {
	// the request is cleared last so Exhausted never reports the previous
	// run; a request arriving meanwhile is kept for the next fill
	switch f.req.Load() {
	case requestReset:
		f.done.Store(false)
		f.slot.Drain(f.pool)
		f.reader.Reset()
		f.req.CompareAndSwap(requestReset, requestNone)
		f.log.Debug("prefetch reset")
	case requestStop:
		f.done.Store(true)
		f.slot.Drain(f.pool)
		f.req.CompareAndSwap(requestStop, requestNone)
		f.log.Debug("prefetch stopped")
	}
	if f.slot.Full() || f.done.Load() {
		return nil
	}
	if !f.reader.HasData() {
		f.done.Store(true)
		return nil
	}
	h, err := f.pool.Allocate()
	if err != nil {
		f.starved.Add(1)
		return nil
	}
	f.reader.ReadSamples(f.pool.Samples(h))
	if r, ok := f.reader.(errReader); ok && r.Err() != nil {
		f.pool.Release(h)
		f.done.Store(true)
		return r.Err()
	}
	f.slot.Put(h)
	f.published.Add(1)
	return nil
}

// Take returns the next block or Nil if none is ready. The caller owns the
// returned reference. Nothing is returned while a stop is pending.
func (f *Prefetcher) Take() block.Handle {
	if f.req.Load() == requestStop {
		return block.Nil
	}
	return f.slot.Take()
}

// Exhausted returns true after the last block was taken, the reader failed
// or a stop was requested, unless a reset is pending.
func (f *Prefetcher) Exhausted() bool {
	switch f.req.Load() {
	case requestStop:
		return true
	case requestReset:
		return false
	}
	return f.done.Load() && !f.slot.Full()
}

// Reset requests a restart from the beginning. The reader is reset on the
// background goroutine before the next block is read.
func (f *Prefetcher) Reset() {
	f.req.Store(requestReset)
}

// Stop requests the end of the stream. The published block is dropped and
// nothing is read until the next Reset.
func (f *Prefetcher) Stop() {
	f.req.Store(requestStop)
}

// Starved returns how many times the pool had no block for the prefetcher.
func (f *Prefetcher) Starved() uint64 {
	return f.starved.Load()
}

// Published returns how many blocks were handed to the audio path.
func (f *Prefetcher) Published() uint64 {
	return f.published.Load()
}
