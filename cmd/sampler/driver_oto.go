//go:build !headless

package main

import (
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// deviceBuffer is the device buffer length in periods.
const deviceBuffer = 4

// otoDriver pulls periods from the sound card callback.
type otoDriver struct {
	ctx    *oto.Context
	player *oto.Player
}

func newDriver(sampleRate int, period time.Duration) (driver, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   deviceBuffer * period,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready
	return &otoDriver{ctx: ctx}, nil
}

func (d *otoDriver) Start(r io.Reader) error {
	d.player = d.ctx.NewPlayer(r)
	d.player.Play()
	return d.player.Err()
}

func (d *otoDriver) Close() error {
	if d.player == nil {
		return nil
	}
	return d.player.Close()
}
