package baseline

import (
	"github.com/cocosip/pimjpeg/internal/bytesource"
	"github.com/cocosip/pimjpeg/jpeg/common"
)

// segmentSource is the thin reader the SegmentReader drives: a
// bytesource.ByteSource plus the "consume 0xFF padding" marker-scanning
// logic markers need but plain byte/short reads don't.
type segmentSource = bytesource.Slice

func bytesourceNew(data []byte) *segmentSource {
	return bytesource.New(data)
}

// readMarker consumes bytes until a 0xFF is found, then bytes until a
// non-0xFF appears - that trailing byte is the marker code. Bytes
// discarded before the first 0xFF are logged as a warning rather than
// treated as fatal; well-formed streams never trigger this path.
func readMarker(jobID string, src *segmentSource) (uint16, error) {
	discarded := 0
	b, err := src.ReadByte()
	if err != nil {
		return 0, err
	}
	for b != 0xFF {
		discarded++
		b, err = src.ReadByte()
		if err != nil {
			return 0, err
		}
	}
	if discarded > 0 {
		common.Warnf(jobID, "discarded %d stray byte(s) before marker", discarded)
	}
	for b == 0xFF {
		b, err = src.ReadByte()
		if err != nil {
			return 0, err
		}
	}
	return 0xFF00 | uint16(b), nil
}

// readSegment reads a marker's 16-bit length (which counts itself) and
// returns the remaining length-2 bytes of payload.
func readSegment(src *segmentSource) ([]byte, error) {
	length, err := src.ReadUint16BE()
	if err != nil {
		return nil, err
	}
	if length < 2 {
		return nil, common.NewError(common.KindMalformedSegment, "segment length field under 2")
	}
	data := make([]byte, length-2)
	for i := range data {
		b, err := src.ReadByte()
		if err != nil {
			return nil, err
		}
		data[i] = b
	}
	return data, nil
}

// skipSegment reads the length field and skips its payload without
// copying it out.
func skipSegment(src *segmentSource) error {
	length, err := src.ReadUint16BE()
	if err != nil {
		return err
	}
	if length < 2 {
		return common.NewError(common.KindMalformedSegment, "segment length field under 2")
	}
	return src.Skip(int(length) - 2)
}
