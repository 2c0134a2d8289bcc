package sampler

// PassThrough forwards its input unchanged. It is useful as a fixed
// attachment point when upstream nodes come and go.
type PassThrough struct {
	Stream
}

// NewPassThrough returns a pass-through node.
func NewPassThrough() *PassThrough {
	return &PassThrough{Stream: newStream(1, 1)}
}

// Update implements Node.
func (p *PassThrough) Update() {
	p.Transmit(p.ReceiveReadOnly(0), 0)
}
