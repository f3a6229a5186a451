package common

// IDCT performs the AnN fast integer inverse DCT on an 8x8 block of
// dequantized, natural-order coefficients, writing clamped 8-bit samples
// (level-shifted by 128) to out at the given stride.
//
// The multiplier constants below are mandated exactly as given - they
// must reproduce the reference decoder's output bit for bit, so there is
// no freedom to pick a different (even mathematically equivalent)
// constant set.
func IDCT(coef []int32, out []byte, stride int) {
	var block [64]int32
	copy(block[:], coef[:64])

	idctPass(&block, 8, 1)
	idctPass(&block, 1, 8)

	for i := 0; i < 64; i++ {
		row := i / 8
		col := i % 8
		out[row*stride+col] = byte(Clamp(int(block[i])+128, 0, 255))
	}
}

// idctPass runs the AnN butterfly eight times, once per line, where a
// "line" is eight elements spaced by elemStride starting every lineStride.
func idctPass(block *[64]int32, elemStride, lineStride int) {
	for i := 0; i < 8; i++ {
		base := i * lineStride
		at := func(n int) int32 { return block[base+n*elemStride] }

		g0 := (at(0) * 181) >> 5
		g1 := (at(4) * 181) >> 5
		g2 := (at(2) * 59) >> 3
		g3 := (at(6) * 49) >> 4
		g4 := (at(5) * 71) >> 4
		g5 := (at(1) * 251) >> 5
		g6 := (at(7) * 25) >> 4
		g7 := (at(3) * 213) >> 5

		f4 := g4 - g7
		f5 := g5 + g6
		f6 := g5 - g6
		f7 := g4 + g7

		e2 := g2 - g3
		e3 := g2 + g3
		e5 := f5 - f7
		e7 := f5 + f7
		e8 := f4 + f6

		d2 := (e2 * 181) >> 7
		d4 := (f4 * 277) >> 8
		d5 := (e5 * 181) >> 7
		d6 := (f6 * 669) >> 8
		d8 := (e8 * 49) >> 6

		c0 := g0 + g1
		c1 := g0 - g1
		c2 := d2 - e3
		c4 := d4 + d8
		c5 := d5 + e7
		c6 := d6 - d8
		c8 := c5 - c6

		b0 := c0 + e3
		b1 := c1 + c2
		b2 := c1 - c2
		b3 := c0 - e3
		b4 := c4 - c8
		b6 := c6 - e7

		block[base+0*elemStride] = (b0 + e7) >> 4
		block[base+1*elemStride] = (b1 + b6) >> 4
		block[base+2*elemStride] = (b2 + c8) >> 4
		block[base+3*elemStride] = (b3 + b4) >> 4
		block[base+4*elemStride] = (b3 - b4) >> 4
		block[base+5*elemStride] = (b2 - c8) >> 4
		block[base+6*elemStride] = (b1 - b6) >> 4
		block[base+7*elemStride] = (b0 - e7) >> 4
	}
}
