// Package copier moves samples between buffers. The sequential backend uses
// the CPU; the channel backend hands transfers to a dedicated worker the way
// a DMA channel takes them off the core. Both complete synchronously: when
// Copy returns, dst holds the copied samples.
package copier

import (
	"errors"
)

// Copier copies count samples from src to dst. The regions must not
// overlap. Init and Deinit bracket the lifetime of any resource the backend
// needs; they are called from setup code, never from the audio path.
type Copier interface {
	Init() error
	Deinit() error
	Copy(dst, src []int16, count int)
}

// Logger is used to report backend failures.
type Logger interface {
	Warn(...interface{})
}

var (
	// ErrNoChannel is returned by Init when every transfer channel is in
	// use.
	ErrNoChannel = errors.New("no free transfer channel")
	// ErrInitialized is returned by Init when the copier is already running.
	ErrInitialized = errors.New("copier already initialized")
)

// Open initializes c. If that fails the error is logged and the sequential
// backend is returned instead, so callers always get a working copier.
func Open(c Copier, l Logger) Copier {
	if err := c.Init(); err != nil {
		if l != nil {
			l.Warn("copier: falling back to sequential: ", err)
		}
		return Sequential{}
	}
	return c
}

// span limits count to what both buffers can hold.
func span(dst, src []int16, count int) int {
	if count > len(dst) {
		count = len(dst)
	}
	if count > len(src) {
		count = len(src)
	}
	if count < 0 {
		return 0
	}
	return count
}

// Sequential copies on the calling goroutine. Its hooks are no-ops.
type Sequential struct{}

// Init implements Copier.
func (Sequential) Init() error { return nil }

// Deinit implements Copier.
func (Sequential) Deinit() error { return nil }

// Copy implements Copier.
func (Sequential) Copy(dst, src []int16, count int) {
	n := span(dst, src, count)
	for i := 0; i < n; i++ {
		dst[i] = src[i]
	}
}
