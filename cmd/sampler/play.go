package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/dudk/sampler/log"
	"github.com/dudk/sampler/midi"
)

// shutdownTimeout bounds the wait for background collaborators.
const shutdownTimeout = 5 * time.Second

var errTimeout = errors.New("timeout waiting for background goroutines")

type playCommand struct {
	config   string
	duration time.Duration
	notes    noteList
	every    time.Duration
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play the configured pads"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "sampler.yaml", "configuration file")
	fs.DurationVar(&cmd.duration, "duration", 0, "stop after duration, run until interrupted if zero")
	fs.Var(&cmd.notes, "notes", "comma separated notes to trigger in turn")
	fs.DurationVar(&cmd.every, "every", 500*time.Millisecond, "interval between triggered notes")
}

func (cmd *playCommand) Run() error {
	cfg, err := loadConfig(cmd.config)
	if err != nil {
		return err
	}
	l := log.GetLogger()
	inst, err := newInstrument(cfg, l)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if cmd.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cmd.duration)
		defer cancel()
	}

	var transport midi.Loopback
	errc := inst.Start(ctx, &transport)
	drv, err := newDriver(cfg.SampleRate, inst.graph.Period())
	if err != nil {
		cancel()
		wait(errc, shutdownTimeout)
		inst.Close()
		return err
	}
	if err := drv.Start(inst.output); err != nil {
		l.Warn("driver: ", err)
	}
	go send(ctx, &transport, cmd.notes, cmd.every)

	var errs multiError
	select {
	case <-ctx.Done():
	case err := <-errc:
		errs.add(err)
	}
	cancel()
	errs.add(drv.Close())
	errs.add(wait(errc, shutdownTimeout))
	inst.report()
	errs.add(inst.Close())
	return errs.ret()
}

// send triggers notes in turn until ctx is done.
func send(ctx context.Context, t *midi.Loopback, notes []uint8, every time.Duration) {
	if len(notes) == 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for i := 0; ; i++ {
		n := notes[i%len(notes)]
		if t.Send(midi.Event{Kind: midi.NoteOn, Note: n, Velocity: 100}) != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		t.Send(midi.Event{Kind: midi.NoteOff, Note: n})
	}
}
