package array

import (
	"encoding/binary"
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// forEncoding (frame-of-reference) stores a Primitive column as a fixed
// reference value plus per-element offsets from it, suited to narrow-
// range integer columns (e.g. already-bit-packed offsets).
type forEncoding struct{}

func (forEncoding) ID() EncodingID { return IDFoR }

func (forEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindPrimitive {
		return fmt.Errorf("for: %w: requires a primitive dtype", ErrDTypeMismatch)
	}
	if len(buffers) != 0 {
		return fmt.Errorf("for: %w: expected no buffers", ErrInvalidEncoding)
	}
	if len(metadata) != 8 {
		return fmt.Errorf("for: %w: expected 8-byte reference metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("for: %w: expected exactly 1 offsets child", ErrInvalidEncoding)
	}
	if children[0].Length() != int(length) {
		return fmt.Errorf("for: %w: child length %d, expected %d", ErrInvalidEncoding, children[0].Length(), length)
	}
	return nil
}

func forReference(metadata []byte) uint64 { return binary.LittleEndian.Uint64(metadata) }

func (forEncoding) IntoCanonical(a *Array) (*Array, error) {
	child, err := a.Child(0).IntoCanonical()
	if err != nil {
		return nil, err
	}
	w := a.DType().Width()
	n := a.Length()
	ref := forReference(a.Metadata())
	nullable := a.DType().Nullable()
	var validity []bool
	if nullable {
		validity = make([]bool, n)
		for i := range validity {
			v, err := child.IsValid(i)
			if err != nil {
				return nil, err
			}
			validity[i] = v
		}
	}
	if w.IsFloat() {
		vals := make([]float64, n)
		for i := range vals {
			vals[i] = PrimitiveFloat(child, i)
		}
		return NewPrimitiveFloats(vals, w, validity, nullable)
	}
	if w.IsSigned() {
		vals := make([]int64, n)
		for i := range vals {
			vals[i] = int64(ref) + PrimitiveInt(child, i)
		}
		return NewPrimitiveInts(vals, w, validity, nullable)
	}
	vals := make([]uint64, n)
	for i := range vals {
		vals[i] = ref + PrimitiveUint(child, i)
	}
	return NewPrimitiveUints(vals, w, validity, nullable)
}

func (forEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(i) }

func (forEncoding) LogicalValidity(a *Array) (*Array, error) { return a.Child(0).LogicalValidity() }

func (forEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	child, err := a.Child(0).Slice(start, end)
	if err != nil {
		return nil, false, err
	}
	out, err := New(IDFoR, a.DType(), uint32(end-start), a.Metadata(), []*Array{child}, nil)
	return out, true, err
}

// NewFoR wraps an offsets child (values already expressed relative to
// reference) as a frame-of-reference-encoded Primitive array of dt.
func NewFoR(dt *dtype.DType, reference uint64, offsets *Array) (*Array, error) {
	meta := make([]byte, 8)
	binary.LittleEndian.PutUint64(meta, reference)
	return New(IDFoR, dt, uint32(offsets.Length()), meta, []*Array{offsets}, nil)
}
