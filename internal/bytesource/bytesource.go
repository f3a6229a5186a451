// Package bytesource hides prefetch/caching behind the small contract the
// JPEG segment and bit readers need: read a byte, read a big-endian short,
// skip, report position, report EOF.
package bytesource

import "io"

// prefetchSize mirrors the reference DPU decoder's MRAM staging window
// (PREFETCH_SIZE in the original C source): bytes are staged into a local
// cache PREFETCH_SIZE at a time rather than fetched one at a time.
const prefetchSize = 1024

// ByteSource delivers bytes of one JPEG buffer to the decoder.
type ByteSource interface {
	ReadByte() (byte, error)
	ReadUint16BE() (uint16, error)
	Skip(n int) error
	Position() int64
	AtEOF() bool
}

// Slice is a ByteSource over an in-memory buffer. It stages reads through a
// fixed-size cache window instead of indexing the slice directly so that
// multiple lanes opened at different start offsets over the same backing
// array behave like independent prefetching readers, matching the staged
// copy the reference decoder performs out of MRAM into a tasklet-local
// cache.
type Slice struct {
	data       []byte
	pos        int64
	cacheStart int64
	cache      [prefetchSize]byte
	cacheLen   int
}

// New creates a Slice positioned at the start of data.
func New(data []byte) *Slice {
	return NewAt(data, 0)
}

// NewAt creates a Slice positioned at the given absolute offset into data.
func NewAt(data []byte, offset int64) *Slice {
	s := &Slice{data: data, pos: offset, cacheStart: -1}
	return s
}

func (s *Slice) fill() {
	start := (s.pos / prefetchSize) * prefetchSize
	if start == s.cacheStart {
		return
	}
	s.cacheStart = start
	if start >= int64(len(s.data)) {
		s.cacheLen = 0
		return
	}
	end := start + prefetchSize
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	s.cacheLen = copy(s.cache[:], s.data[start:end])
}

// ReadByte reads and returns the next byte, advancing the position.
func (s *Slice) ReadByte() (byte, error) {
	if s.AtEOF() {
		return 0, io.EOF
	}
	if s.pos < s.cacheStart || s.pos >= s.cacheStart+int64(s.cacheLen) {
		s.fill()
		if s.cacheLen == 0 {
			return 0, io.EOF
		}
	}
	b := s.cache[s.pos-s.cacheStart]
	s.pos++
	return b, nil
}

// ReadUint16BE reads a 16-bit big-endian value.
func (s *Slice) ReadUint16BE() (uint16, error) {
	hi, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	lo, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Skip advances the position by n bytes without copying them out.
func (s *Slice) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if s.pos+int64(n) > int64(len(s.data)) {
		s.pos = int64(len(s.data))
		return io.EOF
	}
	s.pos += int64(n)
	return nil
}

// Position reports the absolute offset, within data, of the next unread byte.
func (s *Slice) Position() int64 { return s.pos }

// AtEOF reports whether the position has reached the end of the buffer.
func (s *Slice) AtEOF() bool { return s.pos >= int64(len(s.data)) }
