package copier

import (
	"sync"
	"sync/atomic"
)

// MaxChannels is the number of transfer channels that can be initialized
// at the same time.
const MaxChannels = 4

// DefaultBurst is the number of samples moved per transfer beat.
const DefaultBurst = 32

var inUse atomic.Int32

type transfer struct {
	dst, src []int16
	done     chan struct{}
}

// Channel is the accelerated backend. Init claims one of MaxChannels
// transfer channels and starts its worker; Copy submits a transfer and waits
// for it to complete.
type Channel struct {
	// Burst is the number of samples moved per beat. Zero means
	// DefaultBurst.
	Burst int

	mu      sync.Mutex
	running bool
	reqs    chan transfer
	done    chan struct{}
	wg      sync.WaitGroup

	transfers atomic.Uint64
}

// Init implements Copier.
func (c *Channel) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrInitialized
	}
	if inUse.Add(1) > MaxChannels {
		inUse.Add(-1)
		return ErrNoChannel
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	c.reqs = make(chan transfer)
	c.done = make(chan struct{}, 1)
	c.running = true
	c.wg.Add(1)
	go c.run(c.reqs)
	return nil
}

// Deinit stops the worker and frees the channel. It is safe to call on a
// copier that was never initialized.
func (c *Channel) Deinit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	close(c.reqs)
	c.wg.Wait()
	c.running = false
	inUse.Add(-1)
	return nil
}

// Copy implements Copier. It returns after the transfer completed. Calling
// it on an uninitialized channel copies on the calling goroutine.
func (c *Channel) Copy(dst, src []int16, count int) {
	n := span(dst, src, count)
	if n == 0 {
		return
	}
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		Sequential{}.Copy(dst, src, n)
		return
	}
	c.reqs <- transfer{dst: dst[:n], src: src[:n], done: c.done}
	<-c.done
	c.mu.Unlock()
}

// Transfers returns how many transfers the worker completed.
func (c *Channel) Transfers() uint64 {
	return c.transfers.Load()
}

func (c *Channel) run(reqs <-chan transfer) {
	defer c.wg.Done()
	for t := range reqs {
		for off := 0; off < len(t.dst); off += c.Burst {
			end := off + c.Burst
			if end > len(t.dst) {
				end = len(t.dst)
			}
			copy(t.dst[off:end], t.src[off:end])
		}
		c.transfers.Add(1)
		t.done <- struct{}{}
	}
}
