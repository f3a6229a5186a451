package baseline

import (
	"github.com/cocosip/pimjpeg/jpeg/common"
)

// Component describes one color component's geometry and table
// selectors, as parsed from SOF0 and SOS.
type Component struct {
	ID        byte
	H, V      int // sampling factors
	QuantID   int
	DCTableID int
	ACTableID int

	// BlocksWide/BlocksHigh is this component's own block grid, derived
	// from the context's real (padded) luma block grid scaled by this
	// component's sampling factors relative to the maximum.
	BlocksWide, BlocksHigh int
}

// QuantTable holds 64 natural-order (already de-zigzagged) entries.
type QuantTable struct {
	Exists bool
	Values [64]int32
}

// DecoderContext is the read-only state shared by every lane: quant and
// Huffman tables, frame geometry, and the absolute position of the
// entropy-coded scan within the original buffer. It is built once by the
// SegmentReader and never mutated once SOS has been parsed.
type DecoderContext struct {
	Width, Height int
	Precision     int

	Components []*Component

	QuantTables [4]QuantTable
	DCTables    [4]*common.HuffmanTable
	ACTables    [4]*common.HuffmanTable

	MaxH, MaxV int

	// BlocksWide/BlocksHigh is ceil(Width/8) / ceil(Height/8): the luma
	// block grid before any padding.
	BlocksWide, BlocksHigh int

	// BlocksWideReal/BlocksHighReal is that grid padded up to an even
	// count on an axis where the corresponding max sampling factor is 2,
	// so that whole MCUs (max_h x max_v blocks) tile it exactly.
	BlocksWideReal, BlocksHighReal int

	RestartInterval int

	// ScanStart is the absolute byte offset, within the original JPEG
	// buffer, of the first entropy-coded byte. Data is that whole buffer,
	// unsliced, so lanes can compute absolute offsets.
	ScanStart int64
	Data      []byte
}

// MCURowsReal is the real (padded) MCU grid row count, i.e. the number
// of max_v-block steps needed to cover BlocksHighReal.
func (c *DecoderContext) MCURowsReal() int {
	return c.BlocksHighReal / c.MaxV
}

// MCUColsReal is the real (padded) MCU grid column count.
func (c *DecoderContext) MCUColsReal() int {
	return c.BlocksWideReal / c.MaxH
}

// componentByID looks up a parsed component by its SOF component id.
func (c *DecoderContext) componentByID(id byte) *Component {
	for _, comp := range c.Components {
		if comp.ID == id {
			return comp
		}
	}
	return nil
}

// parseSegments reads every marker segment from byte 0 up to (and
// including) SOS, populating a DecoderContext. The first two bytes must
// be SOI. Returns the context positioned at the first entropy-coded byte.
func parseSegments(jobID string, data []byte) (*DecoderContext, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, common.NewError(common.KindInvalidMagic, "stream does not start with SOI")
	}

	src := bytesourceNew(data)
	_ = src.Skip(2)

	ctx := &DecoderContext{}
	sofSeen := false

	for {
		marker, err := readMarker(jobID, src)
		if err != nil {
			return nil, common.WrapError(common.KindMalformedSegment, "failed to read marker", err)
		}

		switch marker {
		case common.MarkerSOF0:
			if sofSeen {
				return nil, common.NewError(common.KindMalformedSegment, "duplicate SOF marker")
			}
			if err := ctx.parseSOF(src); err != nil {
				return nil, err
			}
			sofSeen = true

		case common.MarkerDQT:
			if err := ctx.parseDQT(src); err != nil {
				return nil, err
			}

		case common.MarkerDHT:
			if err := ctx.parseDHT(src); err != nil {
				return nil, err
			}

		case common.MarkerDRI:
			if err := ctx.parseDRI(src); err != nil {
				return nil, err
			}

		case common.MarkerSOS:
			if !sofSeen {
				return nil, common.NewError(common.KindMalformedSegment, "SOS without matching SOF")
			}
			if err := ctx.parseSOS(src); err != nil {
				return nil, err
			}
			ctx.ScanStart = src.Position()
			ctx.Data = data
			return ctx, nil

		case common.MarkerSOF2, common.MarkerSOF1, common.MarkerSOF3,
			common.MarkerSOF5, common.MarkerSOF6, common.MarkerSOF7,
			common.MarkerSOF9, common.MarkerSOF10, common.MarkerSOF11,
			common.MarkerSOF13, common.MarkerSOF14, common.MarkerSOF15,
			0xFFCC: // DAC
			return nil, common.NewError(common.KindUnsupportedProcess, "progressive, arithmetic, hierarchical, lossless or extended JPEG is not supported")

		case common.MarkerEOI:
			return nil, common.NewError(common.KindMalformedSegment, "EOI before SOS")

		default:
			if common.HasLength(marker) {
				if err := skipSegment(src); err != nil {
					return nil, common.WrapError(common.KindMalformedSegment, "failed to skip segment", err)
				}
			}
		}
	}
}

func (c *DecoderContext) parseSOF(src *segmentSource) error {
	data, err := readSegment(src)
	if err != nil {
		return common.WrapError(common.KindMalformedSegment, "SOF: bad segment", err)
	}
	if len(data) < 6 {
		return common.NewError(common.KindMalformedSegment, "SOF: segment too short")
	}

	c.Precision = int(data[0])
	if c.Precision != 8 {
		return common.NewError(common.KindUnsupportedProcess, "only 8-bit precision is supported")
	}

	c.Height = int(data[1])<<8 | int(data[2])
	c.Width = int(data[3])<<8 | int(data[4])
	numComponents := int(data[5])

	if c.Width <= 0 || c.Height <= 0 {
		return common.NewError(common.KindMalformedSegment, "SOF: zero dimension")
	}
	if numComponents < 1 || numComponents > 3 {
		return common.NewError(common.KindMalformedSegment, "SOF: unsupported component count")
	}
	if len(data) < 6+numComponents*3 {
		return common.NewError(common.KindMalformedSegment, "SOF: component list truncated")
	}

	maxH, maxV := 1, 1
	c.Components = make([]*Component, numComponents)
	for i := 0; i < numComponents; i++ {
		off := 6 + i*3
		comp := &Component{
			ID:      data[off],
			H:       int(data[off+1] >> 4),
			V:       int(data[off+1] & 0x0F),
			QuantID: int(data[off+2]),
		}
		if comp.H < 1 || comp.H > 2 || comp.V < 1 || comp.V > 2 {
			return common.NewError(common.KindMalformedSegment, "SOF: sampling factor outside {1,2}")
		}
		if i > 0 && (comp.H != 1 || comp.V != 1) {
			return common.NewError(common.KindMalformedSegment, "SOF: only component 1 may have non-unit sampling")
		}
		if comp.H > maxH {
			maxH = comp.H
		}
		if comp.V > maxV {
			maxV = comp.V
		}
		c.Components[i] = comp
	}

	c.MaxH, c.MaxV = maxH, maxV
	c.BlocksWide = common.DivCeil(c.Width, 8)
	c.BlocksHigh = common.DivCeil(c.Height, 8)

	c.BlocksWideReal = c.BlocksWide
	if maxH == 2 && c.BlocksWideReal%2 == 1 {
		c.BlocksWideReal++
	}
	c.BlocksHighReal = c.BlocksHigh
	if maxV == 2 && c.BlocksHighReal%2 == 1 {
		c.BlocksHighReal++
	}

	for _, comp := range c.Components {
		comp.BlocksWide = c.BlocksWideReal * comp.H / maxH
		comp.BlocksHigh = c.BlocksHighReal * comp.V / maxV
	}

	return nil
}

func (c *DecoderContext) parseDQT(src *segmentSource) error {
	data, err := readSegment(src)
	if err != nil {
		return common.WrapError(common.KindMalformedSegment, "DQT: bad segment", err)
	}

	off := 0
	for off < len(data) {
		pqTq := data[off]
		pq := pqTq >> 4
		tq := pqTq & 0x0F
		if tq > 3 {
			return common.NewError(common.KindMalformedSegment, "DQT: table id out of range")
		}
		off++

		var tbl QuantTable
		tbl.Exists = true
		if pq == 0 {
			if off+64 > len(data) {
				return common.NewError(common.KindMalformedSegment, "DQT: truncated 8-bit table")
			}
			for i := 0; i < 64; i++ {
				tbl.Values[common.ZigZag[i]] = int32(data[off+i])
			}
			off += 64
		} else {
			if off+128 > len(data) {
				return common.NewError(common.KindMalformedSegment, "DQT: truncated 16-bit table")
			}
			for i := 0; i < 64; i++ {
				tbl.Values[common.ZigZag[i]] = int32(data[off+i*2])<<8 | int32(data[off+i*2+1])
			}
			off += 128
		}
		c.QuantTables[tq] = tbl
	}
	return nil
}

func (c *DecoderContext) parseDHT(src *segmentSource) error {
	data, err := readSegment(src)
	if err != nil {
		return common.WrapError(common.KindMalformedSegment, "DHT: bad segment", err)
	}

	off := 0
	for off < len(data) {
		tcTh := data[off]
		tc := tcTh >> 4
		th := tcTh & 0x0F
		if th > 3 {
			return common.NewError(common.KindMalformedSegment, "DHT: table id out of range")
		}
		off++

		table := &common.HuffmanTable{}
		total := 0
		for i := 0; i < 16; i++ {
			if off >= len(data) {
				return common.NewError(common.KindMalformedSegment, "DHT: truncated bit-count list")
			}
			table.Bits[i] = int(data[off])
			total += table.Bits[i]
			off++
		}
		if off+total > len(data) {
			return common.NewError(common.KindMalformedSegment, "DHT: truncated value list")
		}
		table.Values = make([]byte, total)
		copy(table.Values, data[off:off+total])
		off += total

		if err := table.Build(); err != nil {
			return err
		}

		if tc == 0 {
			c.DCTables[th] = table
		} else {
			c.ACTables[th] = table
		}
	}
	return nil
}

func (c *DecoderContext) parseDRI(src *segmentSource) error {
	data, err := readSegment(src)
	if err != nil {
		return common.WrapError(common.KindMalformedSegment, "DRI: bad segment", err)
	}
	if len(data) != 2 {
		return common.NewError(common.KindMalformedSegment, "DRI: segment must be 2 bytes")
	}
	c.RestartInterval = int(data[0])<<8 | int(data[1])
	return nil
}

func (c *DecoderContext) parseSOS(src *segmentSource) error {
	data, err := readSegment(src)
	if err != nil {
		return common.WrapError(common.KindMalformedSegment, "SOS: bad segment", err)
	}
	if len(data) < 1 {
		return common.NewError(common.KindMalformedSegment, "SOS: empty segment")
	}

	ns := int(data[0])
	if ns != len(c.Components) {
		return common.NewError(common.KindMalformedSegment, "SOS: component count does not match SOF")
	}
	if len(data) < 1+ns*2+3 {
		return common.NewError(common.KindMalformedSegment, "SOS: segment too short")
	}

	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]
		comp := c.componentByID(cs)
		if comp == nil {
			return common.NewError(common.KindMalformedSegment, "SOS: unknown component selector")
		}
		comp.DCTableID = int(tdTa >> 4)
		comp.ACTableID = int(tdTa & 0x0F)
	}

	ss := data[1+ns*2]
	se := data[2+ns*2]
	ahal := data[3+ns*2]
	if ss != 0 || se != 63 || ahal != 0 {
		return common.NewError(common.KindUnsupportedProcess, "SOS: spectral selection implies non-baseline scan")
	}

	return nil
}
