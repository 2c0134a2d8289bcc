package main

import (
	"context"
	"os"
	"time"

	"github.com/dudk/sampler"
	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/storage"
)

// recorder drains the record queue into a wav file on a background
// goroutine.
type recorder struct {
	queue    *sampler.Queue
	file     *os.File
	sink     *storage.Sink
	interval time.Duration
	silence  block.Block
	err      error
}

func newRecorder(q *sampler.Queue, f *os.File, sampleRate int, interval time.Duration) *recorder {
	return &recorder{
		queue:    q,
		file:     f,
		sink:     storage.NewSink(f, sampleRate),
		interval: interval,
	}
}

// Run drains the queue until ctx is done or writing fails.
func (r *recorder) Run(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			r.drain()
			if r.err != nil {
				errc <- r.err
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

func (r *recorder) drain() {
	r.queue.Read(func(b *block.Block) {
		if r.err != nil {
			return
		}
		if b == nil {
			b = &r.silence
		}
		r.err = r.sink.WriteBlock(b)
	})
}

// Written returns the number of recorded samples.
func (r *recorder) Written() int {
	return r.sink.Written()
}

// Close writes what is left in the queue and finalizes the file.
func (r *recorder) Close() error {
	r.drain()
	r.queue.Close()
	err := r.sink.Close()
	if e := r.file.Close(); err == nil {
		err = e
	}
	if err == nil {
		err = r.err
	}
	return err
}
