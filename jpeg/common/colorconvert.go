package common

// ColorConvert converts one Y'CbCr sample to 8-bit RGB:
// R = Y + (45*Cr)>>5 + 128, G = Y - (11*Cb + 23*Cr)>>5 + 128,
// B = Y + (113*Cb)>>6 + 128. The inputs are level-shifted 0..255 sample
// bytes; Y, Cb and Cr are each re-centered on zero (minus 128) first.
func ColorConvert(y, cb, cr byte) (byte, byte, byte) {
	yy := int(y) - 128
	cbv := int(cb) - 128
	crv := int(cr) - 128

	r := yy + (45*crv)>>5 + 128
	g := yy - (11*cbv+23*crv)>>5 + 128
	b := yy + (113*cbv)>>6 + 128

	return byte(Clamp(r, 0, 255)), byte(Clamp(g, 0, 255)), byte(Clamp(b, 0, 255))
}
