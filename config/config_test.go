package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/sampler/config"
	"github.com/dudk/sampler/saturate"
)

const full = `
sample_rate: 48000
pool_capacity: 32
copier: dma
root: /flash
format: true
record: out.wav
pads:
  - note: 36
    file: kick.wav
    gain: 0.5
    stretch: 2
  - note: 38
    builtin: click
    gate: true
  - note: 40
    file: loop.raw
`

func TestLoad(t *testing.T) {
	c, err := config.Load(strings.NewReader(full))
	require.NoError(t, err)
	assert.Equal(t, 48000, c.SampleRate)
	assert.Equal(t, 32, c.PoolCapacity)
	assert.Equal(t, config.CopierDMA, c.Copier)
	assert.Equal(t, "/flash", c.Root)
	assert.True(t, c.Format)
	assert.Equal(t, config.DefaultQueueSize, c.QueueSize)
	require.Len(t, c.Pads, 3)

	kick := c.Pads[0]
	assert.True(t, kick.Wav())
	assert.Equal(t, int32(saturate.UnityGain/2), kick.GainQ16())
	assert.Equal(t, int32(2*saturate.UnityGain), kick.StretchQ16())

	click := c.Pads[1]
	assert.Equal(t, "click", click.Builtin)
	assert.True(t, click.Gate)
	assert.Equal(t, int32(saturate.UnityGain), click.GainQ16())

	assert.True(t, c.Pads[2].Raw())
}

func TestLoadDefaults(t *testing.T) {
	c, err := config.Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		description string
		yaml        string
	}{
		{description: "unknown field", yaml: "rate: 1"},
		{description: "negative sample rate", yaml: "sample_rate: -1"},
		{description: "pool too large", yaml: "pool_capacity: 70000"},
		{description: "unknown copier", yaml: "copier: mdma"},
		{description: "zero queue", yaml: "queue_size: -2"},
		{description: "note out of range", yaml: "pads: [{note: 128, builtin: click}]"},
		{description: "no source", yaml: "pads: [{note: 1}]"},
		{description: "two sources", yaml: "pads: [{note: 1, builtin: click, file: a.wav}]"},
		{description: "unknown extension", yaml: "pads: [{note: 1, file: a.mp3}]"},
		{description: "negative gain", yaml: "pads: [{note: 1, file: a.wav, gain: -1}]"},
		{description: "gain not a number", yaml: "pads: [{note: 1, file: a.wav, gain: .nan}]"},
		{description: "infinite gain", yaml: "pads: [{note: 1, file: a.wav, gain: .inf}]"},
		{description: "stretch not a number", yaml: "pads: [{note: 1, file: a.wav, stretch: .nan}]"},
		{description: "stretch too large", yaml: "pads: [{note: 1, file: a.wav, stretch: 5}]"},
		{description: "stretched stream", yaml: "pads: [{note: 1, file: a.raw, stretch: 2}]"},
		{description: "duplicate note", yaml: "pads: [{note: 1, file: a.wav}, {note: 1, builtin: tick}]"},
	}
	for _, test := range tests {
		_, err := config.Load(strings.NewReader(test.yaml))
		assert.ErrorIs(t, err, config.ErrInvalid, test.description)
	}
}
