package sampler

import (
	"github.com/rs/xid"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/copier"
)

type (
	// Node is a vertex of the audio graph. Update is called once per audio
	// period, after every node feeding it was updated in the same period.
	// It must not block and must not allocate other than through the
	// pool.
	Node interface {
		Update()
		Base() *Stream
	}

	// Stream holds the input slots and output connections of a node.
	// Concrete nodes embed it and use its methods inside Update.
	Stream struct {
		id      string
		inputs  []block.Handle
		outputs [][]port
		pool    *block.Pool
		copier  copier.Copier
	}

	// port addresses an input slot of a downstream node.
	port struct {
		node  *Stream
		input int
	}
)

func newStream(inputs, outputs int) Stream {
	return Stream{
		id:      xid.New().String(),
		inputs:  make([]block.Handle, inputs),
		outputs: make([][]port, outputs),
		copier:  copier.Sequential{},
	}
}

// Base implements Node.
func (s *Stream) Base() *Stream {
	return s
}

// ID returns the unique node identifier.
func (s *Stream) ID() string {
	return s.id
}

// NumInputs returns the number of input slots.
func (s *Stream) NumInputs() int {
	return len(s.inputs)
}

// NumOutputs returns the number of outputs.
func (s *Stream) NumOutputs() int {
	return len(s.outputs)
}

// Pool returns the pool the node leases blocks from.
func (s *Stream) Pool() *block.Pool {
	return s.pool
}

// Allocate leases a new block. The second result is false when the pool is
// exhausted; the node should then transmit nothing for this period.
func (s *Stream) Allocate() (block.Handle, bool) {
	if s.pool == nil {
		return block.Nil, false
	}
	h, err := s.pool.Allocate()
	return h, err == nil
}

// Samples resolves a handle received or allocated by this node.
func (s *Stream) Samples(h block.Handle) *block.Block {
	return s.pool.Samples(h)
}

// Release drops the node's reference to the block.
func (s *Stream) Release(h block.Handle) {
	s.pool.Release(h)
}

// ReceiveReadOnly takes the pending block of the input slot. Nil means no
// block arrived this period and the input is silent. The node owns the
// returned reference and must release or transmit it, and must not mutate
// the samples: other nodes may be reading the same block.
func (s *Stream) ReceiveReadOnly(input int) block.Handle {
	if input < 0 || input >= len(s.inputs) {
		block.Assert(false, "input %d out of range", input)
		return block.Nil
	}
	h := s.inputs[input]
	s.inputs[input] = block.Nil
	return h
}

// ReceiveWritable is ReceiveReadOnly for nodes that modify the samples in
// place. A shared block is copied into a fresh one first. Nil is returned
// when no block arrived or the copy could not be allocated.
func (s *Stream) ReceiveWritable(input int) block.Handle {
	h := s.ReceiveReadOnly(input)
	if h.IsNil() || s.pool.Writable(h) {
		return h
	}
	c, ok := s.Allocate()
	if !ok {
		s.pool.Release(h)
		return block.Nil
	}
	s.copier.Copy(s.pool.Samples(c)[:], s.pool.Samples(h)[:], block.Size)
	s.pool.Release(h)
	return c
}

// Transmit hands the block to every input connected to output. The caller's
// reference moves with it: after Transmit the node no longer owns the block
// unless it retained it beforehand. An input still holding a block from an
// earlier transmission keeps it and the new one is not delivered there.
func (s *Stream) Transmit(h block.Handle, output int) {
	if h.IsNil() {
		return
	}
	if output < 0 || output >= len(s.outputs) {
		block.Assert(false, "output %d out of range", output)
		s.pool.Release(h)
		return
	}
	for _, p := range s.outputs[output] {
		if !p.node.inputs[p.input].IsNil() {
			continue
		}
		s.pool.Retain(h)
		p.node.inputs[p.input] = h
	}
	s.pool.Release(h)
}

// flush releases blocks left in the input slots.
func (s *Stream) flush() {
	for i, h := range s.inputs {
		if !h.IsNil() {
			s.pool.Release(h)
			s.inputs[i] = block.Nil
		}
	}
}
