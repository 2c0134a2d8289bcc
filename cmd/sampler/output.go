package main

import (
	"encoding/binary"

	"github.com/dudk/sampler"
	"github.com/dudk/sampler/block"
)

// output is the audio context. Every period it updates the graph and
// encodes the block of the device queue as little-endian PCM. The device
// pulls it with Read.
type output struct {
	graph   *sampler.Graph
	queue   *sampler.Queue
	buf     [2 * block.Size]byte
	pending []byte
}

func newOutput(g *sampler.Graph, q *sampler.Queue) *output {
	return &output{
		graph: g,
		queue: q,
	}
}

// Read implements io.Reader. It always fills p.
func (o *output) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(o.pending) == 0 {
			o.period()
		}
		c := copy(p[n:], o.pending)
		o.pending = o.pending[c:]
		n += c
	}
	return n, nil
}

func (o *output) period() {
	o.graph.Update()
	clear(o.buf[:])
	o.queue.Read(func(b *block.Block) {
		if b == nil {
			return
		}
		for i, s := range b {
			binary.LittleEndian.PutUint16(o.buf[2*i:], uint16(s))
		}
	})
	o.pending = o.buf[:]
}
