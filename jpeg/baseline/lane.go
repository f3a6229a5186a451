package baseline

import (
	"github.com/cocosip/pimjpeg/internal/bytesource"
	"github.com/cocosip/pimjpeg/jpeg/common"
)

// tapeCapacity bounds how many sync-phase tape entries a lane will
// record while hunting for alignment with its successor before giving
// up and raising Desynchronized.
const tapeCapacity = 128

// tapeEntry is one (byte_offset, dc) record, emitted for every decoded
// component block in decode order.
type tapeEntry struct {
	ByteOffset int64
	Component  int
	DC         int32
}

// tapeRing retains only the most recently pushed tapeCapacity entries,
// in decode order, no matter how many are pushed in total. A lane's
// tail tape must reflect its most recent blocks - the region
// approaching and then crossing its assigned end boundary - not the
// first ones it ever decoded.
type tapeRing struct {
	entries [tapeCapacity]tapeEntry
	count   int
	next    int
}

func (r *tapeRing) push(e tapeEntry) {
	r.entries[r.next] = e
	r.next = (r.next + 1) % tapeCapacity
	if r.count < tapeCapacity {
		r.count++
	}
}

// ordered returns the retained entries oldest-to-newest.
func (r *tapeRing) ordered() []tapeEntry {
	if r.count < tapeCapacity {
		out := make([]tapeEntry, r.count)
		copy(out, r.entries[:r.count])
		return out
	}
	out := make([]tapeEntry, tapeCapacity)
	copy(out, r.entries[r.next:])
	copy(out[tapeCapacity-r.next:], r.entries[:r.next])
	return out
}

// mcuBlocks holds one MCU's worth of dequantized, natural-order
// coefficient blocks, one flat slice per component (comp.H*comp.V
// sub-blocks of 64 coefficients each, v-major then h).
type mcuBlocks struct {
	comps [][]int32
}

func newMCUBlocks(ctx *DecoderContext) *mcuBlocks {
	mb := &mcuBlocks{comps: make([][]int32, len(ctx.Components))}
	for i, comp := range ctx.Components {
		mb.comps[i] = make([]int32, comp.H*comp.V*64)
	}
	return mb
}

// laneResult is everything one LaneWorker produces: its decoded blocks
// (keyed by global MCU grid index, row*mcuCols+col), two views of its
// sync tape, and the grid row range it was assigned.
type laneResult struct {
	laneID                 int
	mcuRowStart, mcuRowEnd int // assigned primary region [start, end)
	blocks                 map[int]*mcuBlocks

	// tape holds the first tapeCapacity blocks decoded from this lane's
	// own assigned start. It is what this lane offers when it plays the
	// *successor* role in synchronize() - the predecessor lane needs
	// something to compare against starting at this lane's start.
	tape []tapeEntry

	// tailTape is a rolling window of the most recent tapeCapacity
	// blocks this lane decoded, carried past its assigned row boundary
	// by the continuation phase. It is what this lane offers when it
	// plays the *predecessor* role in synchronize().
	tailTape []tapeEntry

	err error
}

// decodeLane runs one parallel entropy-decode lane: it opens a BitReader
// at an 8-byte-aligned offset within the scan and decodes MCUs in
// row-major order starting from its assigned row. For every lane but the
// last it keeps decoding past its assigned end (up to tapeCapacity more
// blocks) so LaneSynchronizer has material to align against the next
// lane.
func decodeLane(ctx *DecoderContext, laneID, numLanes int) *laneResult {
	mcuCols := ctx.MCUColsReal()
	mcuRows := ctx.MCURowsReal()

	mcuRowStart := laneID * mcuRows / numLanes
	mcuRowEnd := (laneID + 1) * mcuRows / numLanes
	isLast := laneID == numLanes-1

	scanLen := int64(len(ctx.Data)) - ctx.ScanStart
	step := (scanLen + int64(numLanes) - 1) / int64(numLanes)
	byteStart := ctx.ScanStart + int64(laneID)*step
	byteStart -= byteStart % 8
	if byteStart < ctx.ScanStart {
		byteStart = ctx.ScanStart
	}

	src := bytesource.NewAt(ctx.Data, byteStart)
	br := common.NewBitReader(src)

	res := &laneResult{
		laneID:      laneID,
		mcuRowStart: mcuRowStart,
		mcuRowEnd:   mcuRowEnd,
		blocks:      make(map[int]*mcuBlocks),
	}

	blocksPerMCU := 0
	for _, comp := range ctx.Components {
		blocksPerMCU += comp.H * comp.V
	}

	var ring tapeRing
	dcPred := [3]int{}

	decodeOneMCU := func(row, col int) error {
		mb := newMCUBlocks(ctx)
		for ci, comp := range ctx.Components {
			dcTable := ctx.DCTables[comp.DCTableID]
			acTable := ctx.ACTables[comp.ACTableID]
			if dcTable == nil || acTable == nil {
				return common.NewError(common.KindMalformedSegment, "scan references an undefined Huffman table")
			}
			quant := &ctx.QuantTables[comp.QuantID]

			for v := 0; v < comp.V; v++ {
				for h := 0; h < comp.H; h++ {
					offset := src.Position()
					var block [64]int32
					if err := decodeBlock(br, dcTable, acTable, quant, &dcPred[ci], &block); err != nil {
						return err
					}
					sub := v*comp.H + h
					copy(mb.comps[ci][sub*64:sub*64+64], block[:])

					entry := tapeEntry{ByteOffset: offset, Component: ci, DC: block[0]}
					if len(res.tape) < tapeCapacity {
						res.tape = append(res.tape, entry)
					}
					ring.push(entry)
				}
			}
		}
		res.blocks[row*mcuCols+col] = mb
		return nil
	}

	row := mcuRowStart
	for row < mcuRowEnd {
		for col := 0; col < mcuCols; col++ {
			if err := decodeOneMCU(row, col); err != nil {
				res.err = err
				return res
			}
		}
		row++
	}

	if isLast {
		res.tailTape = ring.ordered()
		return res
	}

	// Continuation phase: keep decoding past the assigned row boundary,
	// for up to tapeCapacity more blocks, so the rolling tail tape
	// carries material straddling the boundary for the synchronizer to
	// compare against the next lane's own tape.
	continued := 0
	for row < mcuRows && continued < tapeCapacity {
		for col := 0; col < mcuCols; col++ {
			if err := decodeOneMCU(row, col); err != nil {
				res.err = err
				return res
			}
			continued += blocksPerMCU
			if continued >= tapeCapacity {
				break
			}
		}
		row++
	}

	res.tailTape = ring.ordered()
	return res
}

// synchronize is the pull-based two-tape alignment protocol: it advances
// independently over cur (lane k's tail tape, straddling its assigned
// end boundary) and next (lane k+1's own tape from its assigned start),
// in order, declaring alignment once `needed` consecutive entries match
// on byte offset. It returns the next-lane tape index at which the
// matched run ends (the global MCU grid boundary where lane k+1's own
// output becomes authoritative) and the per-component DC offsets
// observed during the final matching run.
func synchronize(cur, next []tapeEntry, needed int) (boundary int, dcOffset [3]int32, ok bool) {
	ia, ib := 0, 0
	consecutive := 0

	for ia < len(cur) && ib < len(next) {
		a, b := cur[ia], next[ib]
		switch {
		case a.ByteOffset < b.ByteOffset:
			ia++
			consecutive = 0
		case a.ByteOffset > b.ByteOffset:
			ib++
			consecutive = 0
		default:
			if a.Component == b.Component {
				dcOffset[a.Component] = a.DC - b.DC
			}
			consecutive++
			ia++
			ib++
			if consecutive >= needed {
				return ib, dcOffset, true
			}
		}
	}

	return 0, dcOffset, false
}
