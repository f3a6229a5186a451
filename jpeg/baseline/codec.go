package baseline

import (
	"fmt"

	"github.com/cocosip/pimjpeg/codec"
)

var _ codec.Codec = (*Codec)(nil)

// Codec adapts the parallel baseline decoder to the top-level
// codec.Codec interface so it can be looked up through codec.Registry
// alongside any other codec this module grows.
type Codec struct{}

// NewCodec creates a JPEG baseline codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns a human-readable name for this codec instance.
func (c *Codec) Name() string {
	return "JPEG Baseline Decoder"
}

// UID returns a stable content-type-like identifier for this codec.
func (c *Codec) UID() string {
	return "image/jpeg-baseline"
}

// Encode is unsupported: this module decodes baseline JPEG only.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	return nil, fmt.Errorf("baseline codec: encoding is not supported")
}

// Decode runs the parallel decoder over data and converts its result
// into a codec.DecodeResult.
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := Decode(data, *NewOptions())
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		PixelData:  img.Pixels,
		Width:      img.Width,
		Height:     img.Height,
		Components: img.Components,
		BitDepth:   8,
	}, nil
}

func init() {
	codec.Register(NewCodec())
}
