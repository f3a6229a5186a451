package codec_test

import (
	"testing"

	"github.com/cocosip/pimjpeg/codec"
	_ "github.com/cocosip/pimjpeg/jpeg/baseline"
)

func TestCodecRegistry(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantFound bool
		wantUID   string
	}{
		{
			name:      "Get baseline by UID",
			key:       "image/jpeg-baseline",
			wantFound: true,
			wantUID:   "image/jpeg-baseline",
		},
		{
			name:      "Get non-existent codec",
			key:       "non-existent",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := codec.Get(tt.key)

			if tt.wantFound {
				if err != nil {
					t.Errorf("Get(%q) unexpected error: %v", tt.key, err)
					return
				}
				if c == nil {
					t.Errorf("Get(%q) returned nil codec", tt.key)
					return
				}
				if c.UID() != tt.wantUID {
					t.Errorf("Get(%q).UID() = %q, want %q", tt.key, c.UID(), tt.wantUID)
				}
			} else {
				if err == nil {
					t.Errorf("Get(%q) expected error, got nil", tt.key)
				}
				if err != codec.ErrCodecNotFound {
					t.Errorf("Get(%q) error = %v, want %v", tt.key, err, codec.ErrCodecNotFound)
				}
			}
		})
	}
}

func TestListCodecs(t *testing.T) {
	codecs := codec.List()

	if len(codecs) < 1 {
		t.Errorf("List() returned %d codecs, want at least 1", len(codecs))
	}

	found := false
	for _, c := range codecs {
		if c.UID() == "image/jpeg-baseline" {
			found = true
		}
	}
	if !found {
		t.Error("List() did not include the baseline codec")
	}
}

func TestBaselineCodecEncodeIsUnsupported(t *testing.T) {
	c, err := codec.Get("image/jpeg-baseline")
	if err != nil {
		t.Fatalf("Failed to get baseline codec: %v", err)
	}

	_, err = c.Encode(codec.EncodeParams{Width: 1, Height: 1, Components: 1, BitDepth: 8})
	if err == nil {
		t.Fatal("Encode() succeeded, want an error: this codec decodes baseline JPEG only")
	}
}

// minimalBaselineJPEG is a hand-assembled 8x8, single-component,
// all-zero-coefficient baseline JPEG: SOI, a flat DQT, an SOF0 for an
// 8x8 frame, single-symbol DC (category 0) and AC (EOB) Huffman
// tables, SOS, a two-bit entropy payload, and EOI.
var minimalBaselineJPEG = []byte{
	0xFF, 0xD8, // SOI

	0xFF, 0xDB, 0x00, 0x43, 0x00, // DQT, table 0, 8-bit
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,
	0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01,

	0xFF, 0xC0, 0x00, 0x0B, // SOF0, 8x8, 1 component
	0x08, 0x00, 0x08, 0x00, 0x08, 0x01,
	0x01, 0x11, 0x00,

	0xFF, 0xC4, 0x00, 0x14, // DHT, DC table 0: symbol 0 at code "0"
	0x00,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00,

	0xFF, 0xC4, 0x00, 0x14, // DHT, AC table 0: symbol 0x00 (EOB) at code "0"
	0x10,
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00,

	0xFF, 0xDA, 0x00, 0x08, // SOS, 1 component
	0x01, 0x01, 0x00,
	0x00, 0x3F, 0x00,

	0x3F, // entropy data: DC code "0" + AC code "0", padded with 1 bits

	0xFF, 0xD9, // EOI
}

func TestBaselineCodecDecode(t *testing.T) {
	c, err := codec.Get("image/jpeg-baseline")
	if err != nil {
		t.Fatalf("Failed to get baseline codec: %v", err)
	}

	result, err := c.Decode(minimalBaselineJPEG)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if result.Width != 8 {
		t.Errorf("Width = %d, want 8", result.Width)
	}
	if result.Height != 8 {
		t.Errorf("Height = %d, want 8", result.Height)
	}
	if result.Components != 1 {
		t.Errorf("Components = %d, want 1", result.Components)
	}
	if result.BitDepth != 8 {
		t.Errorf("BitDepth = %d, want 8", result.BitDepth)
	}
	for i, px := range result.PixelData {
		if px != 128 {
			t.Fatalf("pixel %d = %d, want 128 (mid-gray)", i, px)
		}
	}
}
