package baseline

import (
	"fmt"

	"github.com/cocosip/pimjpeg/jpeg/common"
)

func newDesyncError(laneID int) error {
	return common.NewError(common.KindDesynchronized, fmt.Sprintf("lane %d failed to align with its successor", laneID))
}

// stitchResult is the fully-aligned coefficient grid: one mcuBlocks per
// global MCU index, DC-corrected and ready for the IDCT/reconstruction
// stage.
type stitchResult struct {
	mcuCols, mcuRows int
	blocks           []*mcuBlocks
}

func (s *stitchResult) at(row, col int) *mcuBlocks {
	return s.blocks[row*s.mcuCols+col]
}

// stitchLanes runs the single-threaded DC reconciliation pass: it walks
// the global MCU grid lane by lane, using each lane's synchronization
// boundary to decide which lane's blocks are authoritative for a given
// grid index, and accumulates per-component DC offsets so the seams
// between lanes carry no discontinuity.
//
// needed is the number of consecutive tape matches required to declare
// two lanes aligned (max_h_samp * max_v_samp + 2, per the lane fan-out).
func stitchLanes(ctx *DecoderContext, lanes []*laneResult, needed int) (*stitchResult, error) {
	mcuCols := ctx.MCUColsReal()
	mcuRows := ctx.MCURowsReal()
	total := mcuCols * mcuRows

	n := len(lanes)
	boundaries := make([]int, n+1)
	boundaries[n] = total

	dcOffsets := make([][3]int32, n)

	for k := 0; k < n-1; k++ {
		boundary, offset, ok := synchronize(lanes[k].tailTape, lanes[k+1].tape, needed)
		if !ok {
			return nil, newDesyncError(k)
		}
		// synchronize reports an index into lanes[k+1].tape. That tape
		// holds one entry per decoded block, in decode order, starting
		// with the block lane k+1 stored as MCU mcuRowStart*mcuCols, so
		// boundary/blocksPerMCU is the number of MCUs past that index.
		blocksPerMCU := 0
		for _, comp := range ctx.Components {
			blocksPerMCU += comp.H * comp.V
		}
		mcuOffset := boundary / blocksPerMCU
		boundaries[k+1] = lanes[k+1].mcuRowStart*mcuCols + mcuOffset
		dcOffsets[k] = offset
	}

	result := &stitchResult{mcuCols: mcuCols, mcuRows: mcuRows, blocks: make([]*mcuBlocks, total)}

	acc := [3]int32{}
	for k := 0; k < n; k++ {
		start, end := boundaries[k], boundaries[k+1]
		if start < 0 {
			start = 0
		}
		if end > total {
			end = total
		}
		for idx := start; idx < end; idx++ {
			mb := lanes[k].blocks[idx]
			if mb == nil {
				return nil, newDesyncError(k)
			}
			applyDCOffset(ctx, mb, acc)
			result.blocks[idx] = mb
		}
		if k < n-1 {
			for c := 0; c < 3; c++ {
				acc[c] += dcOffsets[k][c]
			}
		}
	}

	return result, nil
}

func applyDCOffset(ctx *DecoderContext, mb *mcuBlocks, acc [3]int32) {
	if acc[0] == 0 && acc[1] == 0 && acc[2] == 0 {
		return
	}
	for ci, comp := range ctx.Components {
		if acc[ci] == 0 {
			continue
		}
		subBlocks := comp.H * comp.V
		for sub := 0; sub < subBlocks; sub++ {
			mb.comps[ci][sub*64] += acc[ci]
		}
	}
}
