package common

import (
	"testing"

	"github.com/cocosip/pimjpeg/internal/bytesource"
)

func TestBitReaderUnescapesStuffedFF(t *testing.T) {
	// 0xFF 0x00 is a literal 0xFF byte in the entropy-coded stream.
	br := NewBitReader(bytesource.New([]byte{0xFF, 0x00, 0xAB}))

	v, err := br.GetBits(8)
	if err != nil {
		t.Fatalf("GetBits: %v", err)
	}
	if v != 0xFF {
		t.Errorf("first byte = %#x, want 0xff", v)
	}
	v, err = br.GetBits(8)
	if err != nil {
		t.Fatalf("GetBits: %v", err)
	}
	if v != 0xAB {
		t.Errorf("second byte = %#x, want 0xab", v)
	}
}

func TestBitReaderSwallowsRestartMarkers(t *testing.T) {
	// 0xFF 0xD0 (RST0) is stuffing to be discarded, not data.
	br := NewBitReader(bytesource.New([]byte{0x12, 0xFF, 0xD0, 0x34}))

	v, err := br.GetBits(8)
	if err != nil || v != 0x12 {
		t.Fatalf("first byte = %#x, err=%v, want 0x12", v, err)
	}
	v, err = br.GetBits(8)
	if err != nil || v != 0x34 {
		t.Fatalf("second byte = %#x, err=%v, want 0x34 (RST0 must be swallowed)", v, err)
	}
}

func TestReceiveExtend(t *testing.T) {
	cases := []struct {
		value uint32
		size  int
		want  int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{0, 1, -1},
		{3, 2, 3},
		{0, 2, -3},
		{2, 2, 2},
	}
	for _, c := range cases {
		if got := ReceiveExtend(c.value, c.size); got != c.want {
			t.Errorf("ReceiveExtend(%d,%d) = %d, want %d", c.value, c.size, got, c.want)
		}
	}
}
