package main

import (
	"io"
	"sync"
	"time"

	"github.com/dudk/sampler/block"
)

// driver invokes the audio context once per period.
type driver interface {
	Start(io.Reader) error
	Close() error
}

// tickerDriver pulls one period per tick. It replaces the sound card in
// headless builds and tests.
type tickerDriver struct {
	period time.Duration
	stop   chan struct{}
	wg     sync.WaitGroup
}

func newTicker(period time.Duration) *tickerDriver {
	return &tickerDriver{
		period: period,
		stop:   make(chan struct{}),
	}
}

func (d *tickerDriver) Start(r io.Reader) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		var buf [2 * block.Size]byte
		ticker := time.NewTicker(d.period)
		defer ticker.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-ticker.C:
				r.Read(buf[:])
			}
		}
	}()
	return nil
}

func (d *tickerDriver) Close() error {
	close(d.stop)
	d.wg.Wait()
	return nil
}
