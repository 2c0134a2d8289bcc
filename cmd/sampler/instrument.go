package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dudk/sampler"
	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/config"
	"github.com/dudk/sampler/copier"
	"github.com/dudk/sampler/log"
	"github.com/dudk/sampler/metric"
	"github.com/dudk/sampler/midi"
	"github.com/dudk/sampler/reader"
	"github.com/dudk/sampler/samples"
	"github.com/dudk/sampler/saturate"
	"github.com/dudk/sampler/storage"
)

// outputSize is the number of periods the device queue holds.
const outputSize = 4

// poolName labels the pool gauges.
const poolName = "blocks"

// instrument is the sampler graph with its background collaborators:
//
//	pad sources -> mixer -> output queue (device)
//	                     -> record queue (wav file)
type instrument struct {
	cfg    config.Config
	log    *logrus.Logger
	pool   *block.Pool
	copier copier.Copier
	fs     *storage.Dir
	graph  *sampler.Graph
	mixer  *sampler.Mixer
	router *midi.Router
	output *output

	recorder    *recorder
	prefetchers []*reader.Prefetcher
	files       []storage.File
}

func newCopier(name string) copier.Copier {
	switch name {
	case config.CopierSequential:
		return copier.Sequential{}
	case config.CopierDMA:
		return &copier.Channel{}
	}
	return copier.Default()
}

func newInstrument(cfg config.Config, l *logrus.Logger) (i *instrument, err error) {
	pool, err := block.NewPool(cfg.PoolCapacity)
	if err != nil {
		return nil, err
	}
	metric.Pool(poolName, pool)
	i = &instrument{
		cfg:    cfg,
		log:    l,
		pool:   pool,
		copier: copier.Open(newCopier(cfg.Copier), log.Component(l, "copier")),
		fs:     storage.NewDir(cfg.Root),
		router: midi.NewRouter(midi.WithLogger(log.Component(l, "midi"))),
	}
	defer func() {
		if err != nil {
			i.Close()
		}
	}()

	if cfg.Format {
		err = storage.MountOrFormat(i.fs, log.Component(l, "storage"))
	} else {
		err = i.fs.Mount()
	}
	if err != nil {
		return i, err
	}

	i.graph = sampler.NewGraph(pool,
		sampler.WithCopier(i.copier),
		sampler.WithSampleRate(cfg.SampleRate),
		sampler.WithLogger(log.Component(l, "graph")),
	)
	i.mixer = sampler.NewMixer(len(cfg.Pads))
	out := sampler.NewQueue(outputSize)
	i.graph.Add(i.mixer, out)
	if err = i.graph.Connect(i.mixer, 0, out, 0); err != nil {
		return i, err
	}
	i.output = newOutput(i.graph, out)

	if cfg.Record != "" {
		rec := sampler.NewQueue(cfg.QueueSize)
		i.graph.Add(rec)
		if err = i.graph.Connect(i.mixer, 0, rec, 0); err != nil {
			return i, err
		}
		f, err := i.fs.Create(cfg.Record)
		if err != nil {
			return i, err
		}
		i.recorder = newRecorder(rec, f, cfg.SampleRate, i.graph.Period())
	}

	for n, pad := range cfg.Pads {
		if err = i.addPad(n, pad); err != nil {
			return i, fmt.Errorf("pad %d: %w", pad.Note, err)
		}
	}
	return i, nil
}

// addPad adds the source of pad and connects it to the mixer input n.
func (i *instrument) addPad(n int, pad config.Pad) error {
	var (
		node sampler.Node
		t    midi.Triggerer
	)
	if pad.Raw() {
		f, err := i.fs.Open(pad.File)
		if err != nil {
			return err
		}
		i.files = append(i.files, f)
		p := reader.NewPrefetcher(
			reader.NewStorage(f, 0, f.Size()),
			i.pool,
			reader.WithIdle(),
			reader.WithLogger(log.Component(i.log, "prefetch")),
		)
		i.prefetchers = append(i.prefetchers, p)
		feed := sampler.NewFeed(p)
		node, t = feed, feed
	} else {
		data, err := i.load(pad)
		if err != nil {
			return err
		}
		var r reader.Reader
		if ratio := pad.StretchQ16(); ratio == saturate.UnityGain {
			r = reader.NewMemory(data, i.copier)
		} else {
			r = reader.NewStretch(data, ratio, reader.DefaultHop)
		}
		player := sampler.NewPlayer(r)
		node, t = player, player
	}
	i.graph.Add(node)
	if err := i.graph.Connect(node, 0, i.mixer, n); err != nil {
		return err
	}
	i.mixer.SetGain(n, pad.GainQ16())
	i.router.Route(pad.Note, t, pad.Gate)
	i.log.Infof("pad %d: %s%s gain %.2f stretch %.2f", pad.Note, pad.File, pad.Builtin, pad.Gain, pad.Stretch)
	return nil
}

// load returns the samples of an in-memory pad.
func (i *instrument) load(pad config.Pad) ([]int16, error) {
	if pad.Builtin != "" {
		data, ok := samples.Lookup(pad.Builtin)
		if !ok {
			return nil, fmt.Errorf("unknown builtin sample %q", pad.Builtin)
		}
		return data, nil
	}
	f, err := i.fs.Open(pad.File)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	w, err := storage.LoadWav(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pad.File, err)
	}
	if w.SampleRate != i.cfg.SampleRate {
		i.log.Warnf("%s: sample rate %d differs from %d", pad.File, w.SampleRate, i.cfg.SampleRate)
	}
	return w.Samples, nil
}

// Start runs the background collaborators until ctx is done. The returned
// channel yields their failures and is closed after all of them returned.
func (i *instrument) Start(ctx context.Context, t midi.Transport) <-chan error {
	errcList := []<-chan error{i.router.Serve(ctx, t)}
	for _, p := range i.prefetchers {
		errcList = append(errcList, p.Run(ctx))
	}
	if i.recorder != nil {
		errcList = append(errcList, i.recorder.Run(ctx))
	}
	return mergeErrors(errcList...)
}

// Close releases the graph, files and the copier. It must be called after
// the background collaborators returned.
func (i *instrument) Close() error {
	var errs multiError
	if i.graph != nil {
		i.graph.Close()
	}
	if i.output != nil {
		i.output.queue.Close()
	}
	if i.recorder != nil {
		errs.add(i.recorder.Close())
	}
	for _, f := range i.files {
		errs.add(f.Close())
	}
	errs.add(i.copier.Deinit())
	return errs.ret()
}

// report logs node and pool counters.
func (i *instrument) report() {
	for node, counters := range metric.GetAll() {
		i.log.WithField("node", node).Info(counters)
	}
	i.log.WithField("pool", poolName).Info(metric.GetPool(poolName))
	fields := logrus.Fields{
		"periods": i.graph.Periods(),
		"handled": i.router.Handled(),
	}
	if i.recorder != nil {
		fields["recorded"] = i.recorder.Written()
		fields["overruns"] = i.recorder.queue.Overruns()
	}
	i.log.WithFields(fields).Info("stopped")
}

// mergeErrors merges error channels from all collaborators into one.
func mergeErrors(errcList ...<-chan error) (errc chan error) {
	var wg sync.WaitGroup
	errc = make(chan error, len(errcList))

	output := func(ec <-chan error) {
		for e := range ec {
			errc <- e
		}
		wg.Done()
	}
	wg.Add(len(errcList))
	for _, ec := range errcList {
		go output(ec)
	}

	go func() {
		wg.Wait()
		close(errc)
	}()
	return
}

// wait returns the first error or nil when errc is closed.
func wait(errc <-chan error, timeout time.Duration) error {
	deadline := time.After(timeout)
	for {
		select {
		case err, ok := <-errc:
			if !ok {
				return nil
			}
			if err != nil {
				return err
			}
		case <-deadline:
			return errTimeout
		}
	}
}
