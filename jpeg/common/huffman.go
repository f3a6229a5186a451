package common

// HuffmanTable is a canonical JPEG Huffman table: Bits/Values are the DHT
// wire representation (count of codes per bit length, symbols in code
// order); ValOffset/HuffVal/Codes are the derived decode form described
// by the data model (ValOffset is a prefix sum over Bits, HuffVal aliases
// Values, Codes[j] is the canonical code word for HuffVal[j]).
type HuffmanTable struct {
	Bits   [16]int
	Values []byte

	ValOffset [17]int
	HuffVal   []byte
	Codes     []uint32
}

// Build derives ValOffset, HuffVal and Codes from Bits and Values. Codes
// are assigned left-to-right over increasing code length: within a
// length the code increments by one; between lengths it is left-shifted
// by one, per the canonical JPEG Huffman code construction.
func (h *HuffmanTable) Build() error {
	h.HuffVal = h.Values

	h.ValOffset[0] = 0
	for l := 0; l < 16; l++ {
		h.ValOffset[l+1] = h.ValOffset[l] + h.Bits[l]
	}

	h.Codes = make([]uint32, len(h.Values))
	code := uint32(0)
	for l := 0; l < 16; l++ {
		for j := h.ValOffset[l]; j < h.ValOffset[l+1]; j++ {
			h.Codes[j] = code
			code++
		}
		code <<= 1
	}

	return nil
}

// HuffmanDecoder decodes symbols off a BitReader against a HuffmanTable.
type HuffmanDecoder struct {
	r *BitReader
}

// NewHuffmanDecoder creates a decoder reading from r.
func NewHuffmanDecoder(r *BitReader) *HuffmanDecoder {
	return &HuffmanDecoder{r: r}
}

// Decode reads one bit at a time, folding it into a rolling code, and at
// each length scans codes[valoffset[i]:valoffset[i+1]) for an exact
// match. It fails with KindInvalidHuffmanCode after 16 unsuccessful bits.
func (d *HuffmanDecoder) Decode(table *HuffmanTable) (byte, error) {
	code := uint32(0)
	for l := 0; l < 16; l++ {
		bit, err := d.r.GetBit()
		if err != nil {
			return 0, WrapError(KindUnexpectedEOF, "huffman decode: stream ended mid-code", err)
		}
		code = (code << 1) | bit

		for j := table.ValOffset[l]; j < table.ValOffset[l+1]; j++ {
			if table.Codes[j] == code {
				return table.HuffVal[j], nil
			}
		}
	}
	return 0, NewError(KindInvalidHuffmanCode, "no matching Huffman code within 16 bits")
}

// ReceiveExtend decodes a coefficient value: reads ssss bits off the
// reader and sign-extends them via the EXTEND procedure.
func (d *HuffmanDecoder) ReceiveExtend(ssss int) (int, error) {
	if ssss == 0 {
		return 0, nil
	}
	bits, err := d.r.GetBits(ssss)
	if err != nil {
		return 0, WrapError(KindUnexpectedEOF, "receive-extend: stream ended mid-value", err)
	}
	return ReceiveExtend(bits, ssss), nil
}

// HuffmanCode is a canonical code word and its bit length, indexed by
// symbol byte value (0..255) rather than by code-table position.
type HuffmanCode struct {
	Code uint32
	Len  int
}

// BuildHuffmanCodes returns a 256-entry table mapping each possible
// symbol byte to its canonical code and length, built from an already
// Build()-derived HuffmanTable. Useful for inspecting or re-deriving a
// table's canonical assignment outside of Decode's own bit-by-bit path.
func BuildHuffmanCodes(table *HuffmanTable) []HuffmanCode {
	out := make([]HuffmanCode, 256)
	for l := 0; l < 16; l++ {
		for j := table.ValOffset[l]; j < table.ValOffset[l+1]; j++ {
			sym := table.HuffVal[j]
			out[sym] = HuffmanCode{Code: table.Codes[j], Len: l + 1}
		}
	}
	return out
}
