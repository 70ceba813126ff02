package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// zigZagEncoding stores a signed Primitive column as its zigzag-mapped
// unsigned representation ((v << 1) ^ (v >> 63)), which turns small
// negative and positive magnitudes alike into small unsigned values
// ahead of bit-packing.
type zigZagEncoding struct{}

func (zigZagEncoding) ID() EncodingID { return IDZigZag }

func (zigZagEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindPrimitive || !phys.Width().IsSigned() {
		return fmt.Errorf("zigzag: %w: requires a signed primitive dtype", ErrDTypeMismatch)
	}
	if len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("zigzag: %w: expected no buffers or metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("zigzag: %w: expected exactly 1 encoded child", ErrInvalidEncoding)
	}
	if children[0].Length() != int(length) {
		return fmt.Errorf("zigzag: %w: child length %d, expected %d", ErrInvalidEncoding, children[0].Length(), length)
	}
	if children[0].DType().PhysicalDType().Kind() != dtype.KindPrimitive || children[0].DType().PhysicalDType().Width().IsSigned() {
		return fmt.Errorf("zigzag: %w: encoded child must be an unsigned primitive", ErrDTypeMismatch)
	}
	return nil
}

func zigZagEncode(v int64) uint64  { return uint64(v<<1) ^ uint64(v>>63) }
func zigZagDecode(v uint64) int64  { return int64(v>>1) ^ -int64(v&1) }

func (zigZagEncoding) IntoCanonical(a *Array) (*Array, error) {
	child, err := a.Child(0).IntoCanonical()
	if err != nil {
		return nil, err
	}
	w := a.DType().Width()
	n := a.Length()
	values := make([]int64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		valid[i] = true
		if a.DType().Nullable() {
			v, err := child.IsValid(i)
			if err != nil {
				return nil, err
			}
			valid[i] = v
		}
		values[i] = zigZagDecode(PrimitiveUint(child, i))
	}
	return NewPrimitiveInts(values, w, valid, a.DType().Nullable())
}

func (zigZagEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(i) }

func (zigZagEncoding) LogicalValidity(a *Array) (*Array, error) { return a.Child(0).LogicalValidity() }

func (zigZagEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	child, err := a.Child(0).Slice(start, end)
	if err != nil {
		return nil, false, err
	}
	out, err := New(IDZigZag, a.DType(), uint32(end-start), nil, []*Array{child}, nil)
	return out, true, err
}

// NewZigZag wraps an unsigned Primitive child (already zigzag-mapped) as
// a signed Primitive of dt.
func NewZigZag(dt *dtype.DType, encoded *Array) (*Array, error) {
	return New(IDZigZag, dt, uint32(encoded.Length()), nil, []*Array{encoded}, nil)
}
