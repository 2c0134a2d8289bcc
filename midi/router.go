package midi

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often the router services the transport.
const DefaultInterval = time.Millisecond

type (
	// Triggerer restarts a sample. Trigger must be safe to call from any
	// goroutine, like sampler.Player and sampler.Feed.
	Triggerer interface {
		Trigger()
	}

	// Stopper is implemented by triggers that can be silenced on note off.
	Stopper interface {
		Stop()
	}

	// Logger is the logging interface used by the router.
	Logger interface {
		Debug(...interface{})
		Warn(...interface{})
	}

	// Router maps notes to triggers.
	Router struct {
		interval time.Duration
		log      Logger

		m      sync.RWMutex
		routes map[uint8]route

		handled  atomic.Uint64
		unrouted atomic.Uint64
		ignored  atomic.Uint64
	}

	route struct {
		t Triggerer
		// gate stops the trigger on note off.
		gate bool
	}

	// Option configures a Router.
	Option func(*Router)
)

// WithInterval sets the service interval.
func WithInterval(d time.Duration) Option {
	return func(r *Router) {
		r.interval = d
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(r *Router) {
		r.log = l
	}
}

// NewRouter returns a router without routes.
func NewRouter(options ...Option) *Router {
	r := &Router{
		interval: DefaultInterval,
		log:      silentLogger{},
		routes:   make(map[uint8]route),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Route binds note to t. If gate is true and t is a Stopper, note off
// stops it. A previous route for the note is replaced.
func (r *Router) Route(note uint8, t Triggerer, gate bool) {
	r.m.Lock()
	defer r.m.Unlock()
	r.routes[note&0x7f] = route{t: t, gate: gate}
}

// Unroute removes the route for note.
func (r *Router) Unroute(note uint8) {
	r.m.Lock()
	defer r.m.Unlock()
	delete(r.routes, note&0x7f)
}

// Handle dispatches e and returns true if it reached a trigger.
func (r *Router) Handle(e Event) bool {
	r.m.RLock()
	rt, ok := r.routes[e.Note]
	r.m.RUnlock()
	if !ok {
		if e.Kind == NoteOn {
			r.unrouted.Add(1)
		}
		return false
	}
	switch e.Kind {
	case NoteOn:
		rt.t.Trigger()
	case NoteOff:
		s, ok := rt.t.(Stopper)
		if !rt.gate || !ok {
			return false
		}
		s.Stop()
	default:
		return false
	}
	r.handled.Add(1)
	return true
}

// Serve initializes t and services it until ctx is done or the transport
// fails. The returned channel yields the failure and is closed on return.
func (r *Router) Serve(ctx context.Context, t Transport) <-chan error {
	errc := make(chan error, 1)
	if err := t.Init(); err != nil {
		errc <- err
		close(errc)
		return errc
	}
	go func() {
		defer close(errc)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			if err := r.service(t); err != nil {
				r.log.Warn("midi service stopped: ", err)
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

func (r *Router) service(t Transport) error {
	if err := t.Service(); err != nil {
		return err
	}
	for {
		p, ok := t.ReadPacket()
		if !ok {
			return nil
		}
		e := p.Event()
		if e.Kind == Other {
			r.ignored.Add(1)
			continue
		}
		if r.Handle(e) {
			r.log.Debug("midi ", e.Kind, " note ", e.Note)
		}
	}
}

// Handled returns how many events reached a trigger.
func (r *Router) Handled() uint64 {
	return r.handled.Load()
}

// Unrouted returns how many note on events had no route.
func (r *Router) Unrouted() uint64 {
	return r.unrouted.Load()
}

// Ignored returns how many packets were not channel messages.
func (r *Router) Ignored() uint64 {
	return r.ignored.Load()
}

type silentLogger struct{}

func (silentLogger) Debug(...interface{}) {}

func (silentLogger) Warn(...interface{}) {}
