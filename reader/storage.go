package reader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dudk/sampler/block"
)

// Storage reads little-endian 16-bit PCM from a byte-addressable source,
// such as a file on the instrument's flash. Reads may block, so it is meant
// to be driven by a Prefetcher.
type Storage struct {
	src    io.ReaderAt
	offset int64
	size   int64
	pos    int64
	buf    []byte
	err    error
}

// NewStorage returns a reader over size bytes of src starting at offset.
// An odd trailing byte is ignored.
func NewStorage(src io.ReaderAt, offset, size int64) *Storage {
	return &Storage{
		src:    src,
		offset: offset,
		size:   size &^ 1,
		buf:    make([]byte, 2*block.Size),
	}
}

// Reset implements Reader. It also clears a previous read error.
func (s *Storage) Reset() {
	s.pos = 0
	s.err = nil
}

// HasData implements Reader.
func (s *Storage) HasData() bool {
	return s.err == nil && s.pos < s.size
}

// ReadSamples implements Reader. A read error ends the sequence; it is
// reported by Err.
func (s *Storage) ReadSamples(out *block.Block) int {
	if !s.HasData() {
		block.Assert(false, "storage reader read after exhaustion")
		return 0
	}
	want := s.size - s.pos
	if want > int64(len(s.buf)) {
		want = int64(len(s.buf))
	}
	read, err := s.src.ReadAt(s.buf[:want], s.offset+s.pos)
	if err != nil && !(errors.Is(err, io.EOF) && int64(read) == want) {
		s.err = fmt.Errorf("read at %d: %w", s.offset+s.pos, err)
	}
	n := read / 2
	for i := 0; i < n; i++ {
		out[i] = int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
	}
	pad(out, n)
	s.pos += int64(2 * n)
	return n
}

// Err returns the error that ended the sequence early, if any.
func (s *Storage) Err() error {
	return s.err
}
