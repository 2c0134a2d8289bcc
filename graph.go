package sampler

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/copier"
	"github.com/dudk/sampler/metric"
)

// DefaultSampleRate is the sample rate of the instrument.
const DefaultSampleRate = 44100

var (
	// ErrCycle is returned when a connection would make the graph cyclic.
	ErrCycle = errors.New("connection creates a cycle")
	// ErrPort is returned when an input or output index is out of range.
	ErrPort = errors.New("port out of range")
	// ErrInputConnected is returned when an input already has a producer.
	ErrInputConnected = errors.New("input already connected")
	// ErrUnknownNode is returned when a node was not added to the graph.
	ErrUnknownNode = errors.New("node is not part of the graph")
)

type (
	// Graph owns a set of nodes and updates them once per audio period in
	// topological order, producers before consumers.
	//
	// Topology is changed with Add, Connect and Disconnect before the
	// audio context starts, or with Push while it runs.
	Graph struct {
		pool       *block.Pool
		copier     copier.Copier
		sampleRate int
		log        Logger

		nodes  []Node
		order  []Node
		meters []metric.MeasureFunc
		// producers maps an input port to the output feeding it.
		producers map[port]output

		mutations atomic.Pointer[mutation]
		periods   atomic.Uint64
		lastErr   atomic.Pointer[error]
	}

	output struct {
		node   *Stream
		output int
	}

	// Option configures a Graph.
	Option func(*Graph)

	// Mutation changes the graph on the audio context at the start of the
	// next period.
	Mutation func(*Graph) error

	mutation struct {
		fn   Mutation
		next *mutation
	}

	// Logger is the logging interface used by the graph.
	Logger interface {
		Debug(...interface{})
		Info(...interface{})
	}
)

// WithCopier sets the bulk copier used for copy-on-write.
func WithCopier(c copier.Copier) Option {
	return func(g *Graph) {
		g.copier = c
	}
}

// WithSampleRate sets the sample rate used to compute the period.
func WithSampleRate(sampleRate int) Option {
	return func(g *Graph) {
		g.sampleRate = sampleRate
	}
}

// WithLogger sets logger to Graph. If this option is not provided, silent
// logger is used.
func WithLogger(l Logger) Option {
	return func(g *Graph) {
		g.log = l
	}
}

// NewGraph returns an empty graph whose nodes lease blocks from pool.
func NewGraph(pool *block.Pool, options ...Option) *Graph {
	g := &Graph{
		pool:       pool,
		copier:     copier.Sequential{},
		sampleRate: DefaultSampleRate,
		log:        defaultLogger,
		producers:  make(map[port]output),
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// Pool returns the block pool of the graph.
func (g *Graph) Pool() *block.Pool {
	return g.pool
}

// Period returns the duration of one audio period.
func (g *Graph) Period() time.Duration {
	return time.Duration(block.Size) * time.Second / time.Duration(g.sampleRate)
}

// SampleRate returns the sample rate of the graph.
func (g *Graph) SampleRate() int {
	return g.sampleRate
}

// Add binds nodes to the graph.
func (g *Graph) Add(nodes ...Node) {
	for _, n := range nodes {
		s := n.Base()
		s.pool = g.pool
		s.copier = g.copier
		g.nodes = append(g.nodes, n)
		g.meters = append(g.meters, metric.Meter(n, g.sampleRate)())
		g.log.Debug("graph: added node ", s.ID())
	}
	g.sort()
}

// Remove unbinds a node and drops all its connections.
func (g *Graph) Remove(n Node) error {
	i := g.index(n)
	if i < 0 {
		return ErrUnknownNode
	}
	s := n.Base()
	for p, o := range g.producers {
		if p.node == s || o.node == s {
			g.unlink(p, o)
		}
	}
	s.flush()
	metric.Unmeter(n)
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
	g.meters = append(g.meters[:i], g.meters[i+1:]...)
	g.sort()
	g.log.Debug("graph: removed node ", s.ID())
	return nil
}

// Connect feeds the output of src into the input of dst.
func (g *Graph) Connect(src Node, out int, dst Node, in int) error {
	if g.index(src) < 0 || g.index(dst) < 0 {
		return ErrUnknownNode
	}
	s, d := src.Base(), dst.Base()
	if out < 0 || out >= len(s.outputs) {
		return fmt.Errorf("%w: output %d of %s", ErrPort, out, s.ID())
	}
	if in < 0 || in >= len(d.inputs) {
		return fmt.Errorf("%w: input %d of %s", ErrPort, in, d.ID())
	}
	p := port{node: d, input: in}
	if _, ok := g.producers[p]; ok {
		return fmt.Errorf("%w: input %d of %s", ErrInputConnected, in, d.ID())
	}
	if s == d || g.reaches(d, s) {
		return ErrCycle
	}
	g.producers[p] = output{node: s, output: out}
	s.outputs[out] = append(s.outputs[out], p)
	g.sort()
	return nil
}

// Disconnect removes the connection feeding the input of dst.
func (g *Graph) Disconnect(dst Node, in int) error {
	p := port{node: dst.Base(), input: in}
	o, ok := g.producers[p]
	if !ok {
		return fmt.Errorf("%w: input %d of %s", ErrPort, in, p.node.ID())
	}
	g.unlink(p, o)
	g.sort()
	return nil
}

// Push schedules m to run on the audio context before the next period. It
// is safe to call from any goroutine and never blocks.
//
// Topology changes are the one exception to the no allocation rule of the
// audio context: Add, Remove, Connect and Disconnect allocate while they
// rebuild the update order, so mutations belong between phrases, not in
// every period. Mutations that only flip node parameters do not allocate.
func (g *Graph) Push(m Mutation) {
	n := &mutation{fn: m}
	for {
		head := g.mutations.Load()
		n.next = head
		if g.mutations.CompareAndSwap(head, n) {
			return
		}
	}
}

// Update runs one audio period: pending mutations are applied, then every
// node is updated in topological order.
func (g *Graph) Update() {
	g.mutate()
	for i, n := range g.order {
		n.Update()
		g.meters[i](block.Size)
	}
	g.periods.Add(1)
}

// Periods returns how many periods were processed.
func (g *Graph) Periods() uint64 {
	return g.periods.Load()
}

// Err returns the last error returned by a pushed mutation.
func (g *Graph) Err() error {
	if err := g.lastErr.Load(); err != nil {
		return *err
	}
	return nil
}

// Close releases every block still waiting in an input slot.
func (g *Graph) Close() {
	g.mutate()
	for _, n := range g.nodes {
		n.Base().flush()
	}
}

func (g *Graph) mutate() {
	head := g.mutations.Swap(nil)
	if head == nil {
		return
	}
	// the stack holds the newest first
	var fifo *mutation
	for head != nil {
		next := head.next
		head.next = fifo
		fifo = head
		head = next
	}
	for m := fifo; m != nil; m = m.next {
		if err := m.fn(g); err != nil {
			g.lastErr.Store(&err)
		}
	}
}

func (g *Graph) unlink(p port, o output) {
	delete(g.producers, p)
	ports := o.node.outputs[o.output]
	for i := range ports {
		if ports[i] == p {
			o.node.outputs[o.output] = append(ports[:i], ports[i+1:]...)
			break
		}
	}
	if h := p.node.inputs[p.input]; !h.IsNil() {
		g.pool.Release(h)
		p.node.inputs[p.input] = block.Nil
	}
}

// reaches returns true if to is downstream of from.
func (g *Graph) reaches(from, to *Stream) bool {
	visited := map[*Stream]bool{}
	stack := []*Stream{from}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s == to {
			return true
		}
		if visited[s] {
			continue
		}
		visited[s] = true
		for _, ports := range s.outputs {
			for _, p := range ports {
				stack = append(stack, p.node)
			}
		}
	}
	return false
}

// sort orders nodes producers first. Ties keep the order nodes were added
// in. Meters follow their nodes.
func (g *Graph) sort() {
	indegree := make(map[*Stream]int, len(g.nodes))
	meters := make(map[*Stream]metric.MeasureFunc, len(g.nodes))
	for i, n := range g.nodes {
		meters[n.Base()] = g.meters[i]
	}
	for p := range g.producers {
		indegree[p.node]++
	}
	order := make([]Node, 0, len(g.nodes))
	done := make(map[*Stream]bool, len(g.nodes))
	for len(order) < len(g.nodes) {
		for _, n := range g.nodes {
			s := n.Base()
			if done[s] || indegree[s] > 0 {
				continue
			}
			done[s] = true
			order = append(order, n)
			for _, ports := range s.outputs {
				for _, p := range ports {
					indegree[p.node]--
				}
			}
		}
	}
	sorted := make([]metric.MeasureFunc, len(order))
	for i, n := range order {
		sorted[i] = meters[n.Base()]
	}
	g.order = order
	g.nodes = order
	g.meters = sorted
}

func (g *Graph) index(n Node) int {
	for i := range g.nodes {
		if g.nodes[i].Base() == n.Base() {
			return i
		}
	}
	return -1
}

type silentLogger struct{}

func (silentLogger) Debug(args ...interface{}) {}

func (silentLogger) Info(args ...interface{}) {}

var defaultLogger silentLogger
