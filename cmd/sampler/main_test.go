package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/config"
	"github.com/dudk/sampler/midi"
	"github.com/dudk/sampler/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInit(t *testing.T) {
	assert.Equal(t, 2, len(commands))
	name, args := parseArgs([]string{"sampler", "play", "-duration", "1s"})
	assert.Equal(t, "play", name)
	assert.Equal(t, []string{"-duration", "1s"}, args)
	name, _ = parseArgs([]string{"sampler"})
	assert.Equal(t, "", name)
}

func TestNoteList(t *testing.T) {
	var l noteList
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&l, "notes", "")
	require.NoError(t, fs.Parse([]string{"-notes", "36, 38,40"}))
	assert.Equal(t, noteList{36, 38, 40}, l)
	assert.Equal(t, "36,38,40", l.String())
	assert.Error(t, fs.Parse([]string{"-notes", "128"}))
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testRoot writes a wav and a raw pad into a new directory.
func testRoot(t *testing.T) string {
	root := t.TempDir()
	f, err := os.Create(filepath.Join(root, "tone.wav"))
	require.NoError(t, err)
	s := storage.NewSink(f, config.DefaultSampleRate)
	tone := make([]int16, 3*block.Size)
	for i := range tone {
		tone[i] = 8000
	}
	require.NoError(t, s.Write(tone))
	require.NoError(t, s.Close())
	require.NoError(t, f.Close())

	raw := make([]byte, 4*block.Size)
	for i := 0; i < len(raw); i += 2 {
		raw[i], raw[i+1] = 0x00, 0x10
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "loop.raw"), raw, 0644))
	return root
}

func testConfig(root string) config.Config {
	c := config.Default()
	c.Root = root
	c.Record = "out.wav"
	c.Pads = []config.Pad{
		{Note: 36, File: "tone.wav", Gain: 0.5, Stretch: 2},
		{Note: 38, Builtin: "click", Gain: 1, Stretch: 1, Gate: true},
		{Note: 40, File: "loop.raw", Gain: 1, Stretch: 1},
	}
	return c
}

func TestInstrument(t *testing.T) {
	root := testRoot(t)
	cfg := testConfig(root)
	require.NoError(t, cfg.Validate())

	inst, err := newInstrument(cfg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var transport midi.Loopback
	errc := inst.Start(ctx, &transport)

	buf := make([]byte, 2*block.Size)
	n, err := inst.output.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, make([]byte, len(buf)), buf, "silent before any trigger")

	for _, note := range []uint8{36, 38, 40} {
		require.NoError(t, transport.Send(midi.Event{Kind: midi.NoteOn, Note: note, Velocity: 100}))
	}
	assert.Eventually(t, func() bool {
		return inst.router.Handled() == 3
	}, time.Second, time.Millisecond)

	_, err = inst.output.Read(buf)
	require.NoError(t, err)
	assert.NotEqual(t, make([]byte, len(buf)), buf)

	assert.Eventually(t, func() bool {
		return inst.prefetchers[0].Published() > 0
	}, time.Second, time.Millisecond)
	// odd sized reads span periods
	odd := make([]byte, 3*block.Size+1)
	for i := 0; i < 8; i++ {
		n, err = inst.output.Read(odd)
		require.NoError(t, err)
		assert.Equal(t, len(odd), n)
	}

	cancel()
	require.NoError(t, wait(errc, shutdownTimeout))
	periods := int(inst.graph.Periods())
	require.NoError(t, inst.Close())
	assert.Equal(t, 0, inst.pool.Usage())

	f, err := os.Open(filepath.Join(root, "out.wav"))
	require.NoError(t, err)
	defer f.Close()
	w, err := storage.LoadWav(f)
	require.NoError(t, err)
	assert.Equal(t, periods*block.Size, len(w.Samples))
}

func TestInstrumentErrors(t *testing.T) {
	root := testRoot(t)

	cfg := testConfig(filepath.Join(root, "missing"))
	_, err := newInstrument(cfg, testLogger())
	assert.Error(t, err)

	cfg = testConfig(root)
	cfg.Pads[0].File = "none.wav"
	_, err = newInstrument(cfg, testLogger())
	assert.Error(t, err)

	cfg = testConfig(root)
	cfg.Pads[1].Builtin = "cowbell"
	_, err = newInstrument(cfg, testLogger())
	assert.Error(t, err)

	cfg = testConfig(filepath.Join(root, "fresh"))
	cfg.Format = true
	cfg.Pads = cfg.Pads[1:2]
	inst, err := newInstrument(cfg, testLogger())
	require.NoError(t, err)
	require.NoError(t, inst.Close())
}

func TestTickerDriver(t *testing.T) {
	cfg := testConfig(testRoot(t))
	cfg.Record = ""
	inst, err := newInstrument(cfg, testLogger())
	require.NoError(t, err)

	d := newTicker(time.Millisecond)
	require.NoError(t, d.Start(inst.output))
	assert.Eventually(t, func() bool {
		return inst.graph.Periods() >= 5
	}, time.Second, time.Millisecond)
	require.NoError(t, d.Close())
	require.NoError(t, inst.Close())
}

func TestMultiError(t *testing.T) {
	var errs multiError
	assert.NoError(t, errs.ret())
	errs.add(nil)
	assert.NoError(t, errs.ret())
	errs.add(errTimeout)
	errs.add(storage.ErrNotMounted)
	err := errs.ret()
	assert.ErrorIs(t, err, errTimeout)
	assert.ErrorIs(t, err, storage.ErrNotMounted)
	assert.Equal(t, errTimeout.Error()+", "+storage.ErrNotMounted.Error(), err.Error())
}
