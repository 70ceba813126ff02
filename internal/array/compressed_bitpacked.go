package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// bitPackedEncoding packs each element into a fixed number of bits
// (metadata[0]), narrower than its logical primitive width, suited to
// integer columns with a small value range.
type bitPackedEncoding struct{}

func (bitPackedEncoding) ID() EncodingID { return IDBitPacked }

func (bitPackedEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindPrimitive {
		return fmt.Errorf("bitpacked: %w: requires a primitive dtype", ErrDTypeMismatch)
	}
	if len(metadata) != 1 {
		return fmt.Errorf("bitpacked: %w: expected 1-byte metadata (bit width)", ErrInvalidEncoding)
	}
	bits := int(metadata[0])
	if bits <= 0 || bits > phys.Width().Bits() {
		return fmt.Errorf("bitpacked: %w: bit width %d invalid for %s", ErrInvalidEncoding, bits, phys.Width())
	}
	if len(children) != 0 {
		return fmt.Errorf("bitpacked: %w: expected no children", ErrInvalidEncoding)
	}
	wantBuffers := 1
	if dt.Nullable() {
		wantBuffers = 2
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("bitpacked: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	if buffers[0].Len() < packedBytesLen(int(length), bits) {
		return fmt.Errorf("bitpacked: %w: packed buffer too short", ErrInvalidEncoding)
	}
	return nil
}

func packedBytesLen(n, bits int) int { return (n*bits + 7) / 8 }

func bitsOf(metadata []byte) int { return int(metadata[0]) }

// BitPackedValue extracts the raw bit-width-sized unsigned value at index
// i from a bit-packed buffer, LSB-first, matching the bitmap bit order.
func BitPackedValue(a *Array, i int) uint64 {
	bits := bitsOf(a.Metadata())
	data := a.Buffer(0).Bytes()
	bitPos := i * bits
	var v uint64
	for b := 0; b < bits; b++ {
		pos := bitPos + b
		byteVal := data[pos/8]
		if byteVal&(1<<uint(pos%8)) != 0 {
			v |= 1 << uint(b)
		}
	}
	return v
}

func (bitPackedEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(1), i), nil
}

func (e bitPackedEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(1), i)
	}
	return NewBool(out, nil, false)
}

func (e bitPackedEncoding) IntoCanonical(a *Array) (*Array, error) {
	w := a.DType().PhysicalDType().Width()
	n := a.Length()
	var validity []bool
	if a.DType().Nullable() {
		validity = make([]bool, n)
		for i := range validity {
			validity[i] = bitmapGet(a.Buffer(1), i)
		}
	}
	if w.IsFloat() {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = float64(BitPackedValue(a, i))
		}
		return NewPrimitiveFloats(vals, w, validity, a.DType().Nullable())
	}
	if w.IsSigned() {
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(BitPackedValue(a, i))
		}
		return NewPrimitiveInts(vals, w, validity, a.DType().Nullable())
	}
	vals := make([]uint64, n)
	for i := range vals {
		vals[i] = BitPackedValue(a, i)
	}
	return NewPrimitiveUints(vals, w, validity, a.DType().Nullable())
}

// ScalarAtFastPath answers scalar_at without fully canonicalizing: a
// single bit-width extraction rather than decoding the whole array.
func (e bitPackedEncoding) ScalarAtFastPath(a *Array, i int) (*dtype.Scalar, bool, error) {
	valid, err := e.IsValid(a, i)
	if err != nil {
		return nil, false, err
	}
	w := a.DType().PhysicalDType().Width()
	if !valid {
		return dtype.NewNull(a.DType()), true, nil
	}
	v := BitPackedValue(a, i)
	switch {
	case w.IsFloat():
		return dtype.NewFloat(float64(v), w, a.DType().Nullable()), true, nil
	case w.IsSigned():
		return dtype.NewInt(int64(v), w, a.DType().Nullable()), true, nil
	default:
		return dtype.NewUint(v, w, a.DType().Nullable()), true, nil
	}
}

// SliceFastPath for BitPacked re-packs the requested range into a new
// buffer rather than decoding, since the parent buffer's bit offsets for
// [start:end) aren't byte-aligned in general.
func (e bitPackedEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	bits := bitsOf(a.Metadata())
	n := end - start
	raw := make([]byte, packedBytesLen(n, bits))
	for i := 0; i < n; i++ {
		v := BitPackedValue(a, start+i)
		bitPos := i * bits
		for b := 0; b < bits; b++ {
			if v&(1<<uint(b)) != 0 {
				pos := bitPos + b
				raw[pos/8] |= 1 << uint(pos%8)
			}
		}
	}
	buffers := []*buffer.Buffer{buffer.New(raw, 1)}
	if a.DType().Nullable() {
		bitsV := make([]bool, n)
		for i := range bitsV {
			bitsV[i] = bitmapGet(a.Buffer(1), start+i)
		}
		buffers = append(buffers, bitmapBuild(bitsV))
	}
	out, err := New(IDBitPacked, a.DType(), uint32(n), a.Metadata(), nil, buffers)
	return out, true, err
}

// NewBitPacked packs values (interpreted as raw unsigned bit patterns of
// dt's width) into bitWidth-bit fields.
func NewBitPacked(dt *dtype.DType, values []uint64, bitWidth int, validity []bool) (*Array, error) {
	n := len(values)
	raw := make([]byte, packedBytesLen(n, bitWidth))
	for i, v := range values {
		bitPos := i * bitWidth
		for b := 0; b < bitWidth; b++ {
			if v&(1<<uint(b)) != 0 {
				pos := bitPos + b
				raw[pos/8] |= 1 << uint(pos%8)
			}
		}
	}
	buffers := []*buffer.Buffer{buffer.New(raw, 1)}
	if dt.Nullable() {
		if validity == nil {
			validity = allTrue(n)
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	return New(IDBitPacked, dt, uint32(n), []byte{byte(bitWidth)}, nil, buffers)
}
