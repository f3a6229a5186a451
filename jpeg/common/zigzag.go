package common

// ZigZag maps a zig-zag scan index to its natural-order 2D block index
// (row*8+col). DQT and AC coefficient decoding both read values off the
// wire in zig-zag order and de-zigzag them through this table.
var ZigZag = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// DivCeil returns ceil(a/b) for positive integers.
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}

// Clamp restricts val to [lo, hi].
func Clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
