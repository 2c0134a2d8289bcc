package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dudk/sampler/block"
	"github.com/dudk/sampler/saturate"
)

const (
	bitDepth  = 16
	pcmFormat = 1
	// readSize is the number of frames decoded at once.
	readSize = 1024
)

var (
	// ErrInvalidWav is returned when the data is not a wav file.
	ErrInvalidWav = errors.New("wav is not valid")
	// ErrUnsupportedBitDepth is returned for non 16 bit files.
	ErrUnsupportedBitDepth = errors.New("only 16 bit depth is supported")
)

type (
	// Wav is a decoded file. Multichannel files are mixed down to mono.
	Wav struct {
		Samples    []int16
		SampleRate int
	}

	// Sink writes mono 16 bit blocks to a wav file.
	Sink struct {
		encoder *wav.Encoder
		buf     *audio.IntBuffer
		written int
	}
)

// LoadWav decodes a 16 bit PCM wav file.
func LoadWav(r io.ReadSeeker) (Wav, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Wav{}, ErrInvalidWav
	}
	if decoder.BitDepth != bitDepth {
		return Wav{}, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, decoder.BitDepth)
	}
	numChannels := int(decoder.NumChans)
	ib := &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, readSize*numChannels),
		SourceBitDepth: bitDepth,
	}
	var samples []int16
	for {
		n, err := decoder.PCMBuffer(ib)
		if err != nil {
			return Wav{}, err
		}
		if n == 0 {
			break
		}
		samples = appendMono(samples, ib.Data[:n], numChannels)
	}
	return Wav{
		Samples:    samples,
		SampleRate: int(decoder.SampleRate),
	}, nil
}

// appendMono averages interleaved frames into dst.
func appendMono(dst []int16, data []int, numChannels int) []int16 {
	if numChannels == 1 {
		for _, v := range data {
			dst = append(dst, saturate.Int16(int32(v)))
		}
		return dst
	}
	for i := 0; i+numChannels <= len(data); i += numChannels {
		sum := 0
		for _, v := range data[i : i+numChannels] {
			sum += v
		}
		dst = append(dst, saturate.Int16(int32(sum/numChannels)))
	}
	return dst
}

// NewSink returns a sink encoding into w. Close must be called to write the
// header.
func NewSink(w io.WriteSeeker, sampleRate int) *Sink {
	return &Sink{
		encoder: wav.NewEncoder(w, sampleRate, bitDepth, 1, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 1,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, block.Size),
			SourceBitDepth: bitDepth,
		},
	}
}

// Write encodes samples.
func (s *Sink) Write(samples []int16) error {
	if cap(s.buf.Data) < len(samples) {
		s.buf.Data = make([]int, len(samples))
	}
	s.buf.Data = s.buf.Data[:len(samples)]
	for i, v := range samples {
		s.buf.Data[i] = int(v)
	}
	if err := s.encoder.Write(s.buf); err != nil {
		return err
	}
	s.written += len(samples)
	return nil
}

// WriteBlock encodes one block.
func (s *Sink) WriteBlock(b *block.Block) error {
	return s.Write(b[:])
}

// Written returns the number of samples encoded.
func (s *Sink) Written() int {
	return s.written
}

// Close finalizes the header. It does not close the underlying writer.
func (s *Sink) Close() error {
	return s.encoder.Close()
}
