/*
Package sampler is the block-processing core of a sampler/drum instrument.

# Concept

Audio is produced in fixed blocks of block.Size signed 16-bit mono samples,
once per audio period. The period is driven by an external timing source
which calls Graph.Update; every node of the graph is then updated once, in
topological order, so producers run before their consumers:

	Player -> Amp -> Mixer -> Queue
	Feed   -------->

# Blocks and the pool

Blocks are leased from a block.Pool and moved between nodes as handles. A
node that receives a block owns one reference and must either release it or
transmit it. Transmit gives the block to every connected input; nodes that
want to modify a received block call ReceiveWritable, which copies the block
first when other nodes hold references to it.

The pool never blocks. When it is exhausted a node transmits nothing for the
period and downstream nodes treat the missing block as silence.

# Contexts

Graph.Update runs on the audio context only. Background goroutines (storage
readers, MIDI handling, recorders) communicate with it through atomic flags,
the pool's atomic reference counts, lock-free handoff slots and queues, and
Graph.Push for topology changes:

	g.Push(func(g *sampler.Graph) error {
	    return g.Connect(player, 0, mixer, 2)
	})

# Build configuration

The bulk copier backend is selected with the dma build tag, the saturation
implementation with hwsat, and contract violations panic when built with
debug.
*/
package sampler
