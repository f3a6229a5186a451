package baseline

import (
	"github.com/cocosip/pimjpeg/codec"
)

// Ensure Options implements codec.Options.
var _ codec.Options = (*Options)(nil)

// Options controls the parallel decoder.
type Options struct {
	// NumLanes is the number of parallel entropy-decode lanes Decode
	// splits the scan into. 0 or negative means GOMAXPROCS.
	NumLanes int

	// Flip mirrors the decoded image horizontally.
	Flip bool

	// HalfScale downsamples the decoded image 2x on each axis.
	HalfScale bool
}

// NewOptions returns Options with no decode-side transforms.
func NewOptions() *Options {
	return &Options{}
}

// Validate normalizes an out-of-range NumLanes rather than failing,
// matching the teacher's tolerant parameter handling.
func (o *Options) Validate() error {
	if o.NumLanes < 0 {
		o.NumLanes = 0
	}
	return nil
}
