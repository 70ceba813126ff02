package array

import "github.com/vortexdb/vortex/internal/buffer"

// bitmapGet reads bit i (0-indexed, LSB-first within each byte) from a
// bit-packed buffer. Used by Bool values/validity and every compressed
// encoding's validity bitmap.
func bitmapGet(b *buffer.Buffer, i int) bool {
	by := b.Bytes()[i/8]
	return by&(1<<uint(i%8)) != 0
}

// bitmapLen returns the number of bytes needed to bit-pack n booleans.
func bitmapLen(n int) int { return (n + 7) / 8 }

// bitmapBuild bit-packs a []bool into a new Buffer, alignment 1.
func bitmapBuild(bits []bool) *buffer.Buffer {
	out := make([]byte, bitmapLen(len(bits)))
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return buffer.New(out, 1)
}

// allTrue returns a []bool of length n where every element is true, used
// as the default LogicalValidity for encodings with no validity buffer of
// their own.
func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}
