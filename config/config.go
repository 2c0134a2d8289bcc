// Package config loads the instrument configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/saturate"
)

// Copier backends.
const (
	// CopierDefault selects the backend chosen at build time.
	CopierDefault    = "default"
	CopierSequential = "sequential"
	CopierDMA        = "dma"
)

// Defaults applied by Load.
const (
	DefaultSampleRate   = 44100
	DefaultPoolCapacity = 64
	DefaultQueueSize    = 64
	DefaultRoot         = "."
)

// MaxStretch bounds the stretch ratio in both directions.
const MaxStretch = 4.0

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

type (
	// Config describes the instrument.
	Config struct {
		// SampleRate is the output rate in Hz.
		// Default: 44100
		SampleRate int `yaml:"sample_rate"`

		// PoolCapacity is the number of blocks in the pool.
		// Default: 64
		PoolCapacity int `yaml:"pool_capacity"`

		// Copier is "default", "sequential" or "dma".
		// Default: "default"
		Copier string `yaml:"copier"`

		// Root is the directory mounted as sample storage.
		// Default: "."
		Root string `yaml:"root"`

		// Format allows formatting the root if mounting fails.
		Format bool `yaml:"format"`

		// Record is the output wav file name, relative to Root. Empty
		// disables recording.
		Record string `yaml:"record"`

		// QueueSize is the number of blocks the record queue holds.
		// Default: 64
		QueueSize int `yaml:"queue_size"`

		Pads []Pad `yaml:"pads"`
	}

	// Pad binds a MIDI note to a sample.
	Pad struct {
		Note uint8 `yaml:"note"`

		// File is a 16 bit wav file loaded into memory or a raw little
		// endian PCM file streamed from storage, picked by extension.
		File string `yaml:"file"`

		// Builtin names a table from the samples package.
		Builtin string `yaml:"builtin"`

		// Gain is the linear gain.
		// Default: 1
		Gain float64 `yaml:"gain"`

		// Stretch is the duration factor. It is not supported for
		// streamed files.
		// Default: 1
		Stretch float64 `yaml:"stretch"`

		// Gate stops the sample on note off.
		Gate bool `yaml:"gate"`
	}
)

// Default returns a configuration without pads.
func Default() Config {
	return Config{
		SampleRate:   DefaultSampleRate,
		PoolCapacity: DefaultPoolCapacity,
		Copier:       CopierDefault,
		Root:         DefaultRoot,
		QueueSize:    DefaultQueueSize,
	}
}

// Load decodes, applies defaults and validates.
func Load(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	c := Default()
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for i := range c.Pads {
		if c.Pads[i].Gain == 0 {
			c.Pads[i].Gain = 1
		}
		if c.Pads[i].Stretch == 0 {
			c.Pads[i].Stretch = 1
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return invalid("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.PoolCapacity < 1 || c.PoolCapacity > block.MaxCapacity {
		return invalid("pool_capacity must be in [1, %d], got %d", block.MaxCapacity, c.PoolCapacity)
	}
	switch c.Copier {
	case CopierDefault, CopierSequential, CopierDMA:
	default:
		return invalid("copier must be %q, %q or %q, got %q", CopierDefault, CopierSequential, CopierDMA, c.Copier)
	}
	if c.QueueSize < 1 {
		return invalid("queue_size must be positive, got %d", c.QueueSize)
	}
	notes := make(map[uint8]struct{}, len(c.Pads))
	for i, p := range c.Pads {
		if err := p.validate(); err != nil {
			return fmt.Errorf("pad %d: %w", i, err)
		}
		if _, ok := notes[p.Note]; ok {
			return invalid("pad %d: note %d is already bound", i, p.Note)
		}
		notes[p.Note] = struct{}{}
	}
	return nil
}

func (p Pad) validate() error {
	if p.Note > 127 {
		return invalid("note must be in [0, 127], got %d", p.Note)
	}
	if (p.File == "") == (p.Builtin == "") {
		return invalid("exactly one of file and builtin must be set")
	}
	if p.File != "" && !p.Wav() && !p.Raw() {
		return invalid("file must be .wav or .raw, got %q", p.File)
	}
	if math.IsNaN(p.Gain) || p.Gain < 0 || p.Gain > math.MaxInt32/float64(saturate.UnityGain) {
		return invalid("gain out of range: %v", p.Gain)
	}
	if math.IsNaN(p.Stretch) || p.Stretch < 1/MaxStretch || p.Stretch > MaxStretch {
		return invalid("stretch must be in [%v, %v], got %v", 1/MaxStretch, MaxStretch, p.Stretch)
	}
	if p.Raw() && p.Stretch != 1 {
		return invalid("stretch is not supported for streamed file %q", p.File)
	}
	return nil
}

// Wav returns true if the pad loads a wav file into memory.
func (p Pad) Wav() bool {
	return strings.EqualFold(path.Ext(p.File), ".wav")
}

// Raw returns true if the pad streams a raw PCM file.
func (p Pad) Raw() bool {
	return strings.EqualFold(path.Ext(p.File), ".raw")
}

// GainQ16 returns the gain in Q16.16.
func (p Pad) GainQ16() int32 {
	return int32(math.Round(p.Gain * saturate.UnityGain))
}

// StretchQ16 returns the stretch ratio in Q16.16.
func (p Pad) StretchQ16() int32 {
	return int32(math.Round(p.Stretch * saturate.UnityGain))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
