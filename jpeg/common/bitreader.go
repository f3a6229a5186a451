package common

import (
	"errors"
	"io"

	"github.com/cocosip/pimjpeg/internal/bytesource"
)

// BitReader sits on top of a ByteSource and delivers N-bit unsigned
// integers out of the entropy-coded segment, unescaping byte stuffing as
// it goes. It maintains a 32-bit buffer whose low-order bitsLeft bits are
// the unread bits, oldest bit most significant, and that count bitsLeft.
type BitReader struct {
	src      bytesource.ByteSource
	buf      uint32
	bitsLeft int
	atEnd    bool
}

// NewBitReader wraps src. Reading begins at src's current position.
func NewBitReader(src bytesource.ByteSource) *BitReader {
	return &BitReader{src: src}
}

// fillByte pulls one unstuffed byte into the buffer, applying the
// stuffed-byte rules:
//   - 0xFF 0x00 -> literal 0xFF.
//   - 0xFF followed by a restart marker (0xD0..0xD7) -> discard both and
//     pull another byte; restart intervals do not reset DC predictors
//     (see DESIGN.md).
//   - 0xFF followed by any other byte -> end of entropy stream.
//
// Once the stream has ended, no further bytes are read from src.
func (r *BitReader) fillByte() (byte, bool) {
	if r.atEnd {
		return 0, false
	}
	for {
		b, err := r.src.ReadByte()
		if err != nil {
			r.atEnd = true
			return 0, false
		}
		if b != 0xFF {
			return b, true
		}
		marker, err := r.src.ReadByte()
		if err != nil {
			r.atEnd = true
			return 0, false
		}
		switch {
		case marker == 0x00:
			return 0xFF, true
		case marker >= 0xD0 && marker <= 0xD7:
			continue
		default:
			r.atEnd = true
			return 0, false
		}
	}
}

// GetBits returns the next n bits (0 <= n <= 16) as an unsigned value,
// MSB first. Once the entropy stream has ended, GetBits returns zero bits
// forever and reports io.EOF.
func (r *BitReader) GetBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	for r.bitsLeft < n {
		b, ok := r.fillByte()
		if !ok {
			if r.bitsLeft == 0 {
				return 0, io.EOF
			}
			// Pad with zero bits so callers that over-read at the very
			// end of the stream see zeros rather than a hard failure.
			r.buf <<= uint(n - r.bitsLeft)
			r.bitsLeft = n
			break
		}
		r.buf = r.buf<<8 | uint32(b)
		r.bitsLeft += 8
	}
	shift := uint(r.bitsLeft - n)
	val := (r.buf >> shift) & ((1 << uint(n)) - 1)
	r.bitsLeft -= n
	r.buf &= (1 << uint(r.bitsLeft)) - 1
	return val, nil
}

// PeekBits returns the next n bits without consuming them. It is only
// valid for n <= 16.
func (r *BitReader) PeekBits(n int) (uint32, error) {
	for r.bitsLeft < n {
		b, ok := r.fillByte()
		if !ok {
			if r.bitsLeft == 0 {
				return 0, io.EOF
			}
			pad := n - r.bitsLeft
			return (r.buf << uint(pad)) & ((1 << uint(n)) - 1), nil
		}
		r.buf = r.buf<<8 | uint32(b)
		r.bitsLeft += 8
	}
	shift := uint(r.bitsLeft - n)
	return (r.buf >> shift) & ((1 << uint(n)) - 1), nil
}

// Advance discards n previously peeked bits.
func (r *BitReader) Advance(n int) error {
	if n > r.bitsLeft {
		return errors.New("bitreader: advance past buffered bits")
	}
	r.bitsLeft -= n
	r.buf &= (1 << uint(r.bitsLeft)) - 1
	return nil
}

// GetBit returns a single bit.
func (r *BitReader) GetBit() (uint32, error) {
	return r.GetBits(1)
}

// AtEnd reports whether the entropy stream has been exhausted (either the
// underlying source hit EOF or a non-restart marker terminated the scan).
func (r *BitReader) AtEnd() bool {
	return r.atEnd && r.bitsLeft == 0
}

// ReceiveExtend sign-extends a magnitude-category-coded value per the
// JPEG spec's EXTEND procedure: values in the lower half of the category's
// range are negative.
func ReceiveExtend(value uint32, size int) int {
	if size == 0 {
		return 0
	}
	vt := int32(1) << uint(size-1)
	v := int32(value)
	if v < vt {
		return int(v - (int32(1)<<uint(size) - 1))
	}
	return int(v)
}
