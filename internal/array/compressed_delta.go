package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// deltaEncoding stores a Primitive column as successive differences: the
// decoded value at i is the prefix sum of the deltas child through i,
// suited to monotonically-increasing or slowly-varying columns.
type deltaEncoding struct{}

func (deltaEncoding) ID() EncodingID { return IDDelta }

func (deltaEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindPrimitive {
		return fmt.Errorf("delta: %w: requires a primitive dtype", ErrDTypeMismatch)
	}
	if len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("delta: %w: expected no buffers or metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("delta: %w: expected exactly 1 deltas child", ErrInvalidEncoding)
	}
	if children[0].Length() != int(length) {
		return fmt.Errorf("delta: %w: deltas child length %d, expected %d", ErrInvalidEncoding, children[0].Length(), length)
	}
	return nil
}

func (deltaEncoding) IntoCanonical(a *Array) (*Array, error) {
	child, err := a.Child(0).IntoCanonical()
	if err != nil {
		return nil, err
	}
	w := a.DType().Width()
	n := a.Length()
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
		var running float64
		for i := range vals {
			d := PrimitiveFloat(child, i)
			if i == 0 {
				running = d
			} else {
				running += d
			}
			vals[i] = running
		}
		return NewPrimitiveFloats(vals, w, validity, nullable)
	}
	vals := make([]int64, n)
	var running int64
	for i := range vals {
		d := PrimitiveInt(child, i)
		if i == 0 {
			running = d
		} else {
			running += d
		}
		vals[i] = running
	}
	return NewPrimitiveInts(vals, w, validity, nullable)
}

func (deltaEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(i) }

func (deltaEncoding) LogicalValidity(a *Array) (*Array, error) { return a.Child(0).LogicalValidity() }

// NewDelta wraps a deltas child (element 0 is the absolute base value,
// subsequent elements are consecutive differences) as dt.
func NewDelta(dt *dtype.DType, deltas *Array) (*Array, error) {
	return New(IDDelta, dt, uint32(deltas.Length()), nil, []*Array{deltas}, nil)
}
