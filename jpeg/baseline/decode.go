package baseline

import (
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cocosip/pimjpeg/jpeg/common"
)

// Image is a fully decoded, reconstructed raster: 8-bit interleaved
// samples, row-major, top-to-bottom, Components channels per pixel
// (1 for grayscale, 3 for RGB).
type Image struct {
	Pixels     []byte
	Width      int
	Height     int
	Components int
}

// Decode parses a baseline JPEG stream and reconstructs it into an RGB
// (or grayscale) raster, fanning the entropy-coded scan out across
// opts.NumLanes parallel workers when the image has enough MCU rows to
// make that worthwhile.
func Decode(data []byte, opts Options) (*Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()

	ctx, err := parseSegments(jobID, data)
	if err != nil {
		return nil, err
	}

	numLanes := opts.NumLanes
	if numLanes <= 0 {
		numLanes = runtime.GOMAXPROCS(0)
	}
	if rows := ctx.MCURowsReal(); numLanes > rows {
		numLanes = rows
	}
	// A lane needs at least 8 bytes of scan to have anything to decode;
	// clamp down rather than hand a trailing lane a zero-length slice.
	if scanLen := int64(len(data)) - ctx.ScanStart; numLanes > 1 && int64(numLanes)*8 > scanLen {
		if clamped := int(scanLen / 8); clamped < numLanes {
			numLanes = clamped
		}
	}
	if numLanes < 1 {
		numLanes = 1
	}

	lanes := make([]*laneResult, numLanes)
	g := new(errgroup.Group)
	for i := 0; i < numLanes; i++ {
		i := i
		g.Go(func() error {
			res := decodeLane(ctx, i, numLanes)
			lanes[i] = res
			return res.err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	needed := ctx.MaxH*ctx.MaxV + 2
	stitched, err := stitchLanes(ctx, lanes, needed)
	if err != nil {
		return nil, err
	}

	planes := reconstructPlanes(ctx, stitched)

	if opts.Flip {
		for _, p := range planes {
			p.FlipHorizontal()
		}
	}
	if opts.HalfScale {
		for i, p := range planes {
			planes[i] = p.HalfScale()
		}
	}

	return assembleImage(ctx, planes, opts)
}

// reconstructPlanes runs the AnN IDCT over every stitched block,
// producing one spatial-domain Plane per component.
func reconstructPlanes(ctx *DecoderContext, stitched *stitchResult) []*Plane {
	planes := make([]*Plane, len(ctx.Components))
	for ci, comp := range ctx.Components {
		planes[ci] = newPlane(comp.BlocksWide, comp.BlocksHigh)
	}

	for row := 0; row < stitched.mcuRows; row++ {
		for col := 0; col < stitched.mcuCols; col++ {
			mb := stitched.at(row, col)
			for ci, comp := range ctx.Components {
				for v := 0; v < comp.V; v++ {
					for h := 0; h < comp.H; h++ {
						sub := v*comp.H + h
						coef := mb.comps[ci][sub*64 : sub*64+64]

						blockCol := col*comp.H + h
						blockRow := row*comp.V + v
						p := planes[ci]
						common.IDCT(coef, p.Blocks[blockRow*p.BlocksWide+blockCol][:], 8)
					}
				}
			}
		}
	}

	return planes
}

func planeSample(p *Plane, x, y int) byte {
	bx, by := x/8, y/8
	if bx >= p.BlocksWide {
		bx = p.BlocksWide - 1
	}
	if by >= p.BlocksHigh {
		by = p.BlocksHigh - 1
	}
	return p.Blocks[by*p.BlocksWide+bx][(y%8)*8+(x%8)]
}

// assembleImage upsamples subsampled chroma planes to the luma grid with
// nearest-neighbor sampling, converts YCbCr to RGB, and clips to the
// frame's declared (optionally halved) dimensions.
func assembleImage(ctx *DecoderContext, planes []*Plane, opts Options) (*Image, error) {
	width, height := ctx.Width, ctx.Height
	if opts.HalfScale {
		width /= 2
		height /= 2
	}

	numComponents := len(ctx.Components)
	pixels := make([]byte, width*height*numComponents)

	if numComponents == 1 {
		luma := planes[0]
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pixels[y*width+x] = planeSample(luma, x, y)
			}
		}
		return &Image{Pixels: pixels, Width: width, Height: height, Components: 1}, nil
	}

	luma, cb, cr := planes[0], planes[1], planes[2]
	cbComp, crComp := ctx.Components[1], ctx.Components[2]
	ratioHCb := ctx.MaxH / cbComp.H
	ratioVCb := ctx.MaxV / cbComp.V
	ratioHCr := ctx.MaxH / crComp.H
	ratioVCr := ctx.MaxV / crComp.V

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			yy := planeSample(luma, x, y)
			cbv := planeSample(cb, x/ratioHCb, y/ratioVCb)
			crv := planeSample(cr, x/ratioHCr, y/ratioVCr)

			r, gg, b := common.ColorConvert(yy, cbv, crv)
			off := (y*width + x) * 3
			pixels[off+0] = r
			pixels[off+1] = gg
			pixels[off+2] = b
		}
	}

	return &Image{Pixels: pixels, Width: width, Height: height, Components: 3}, nil
}
