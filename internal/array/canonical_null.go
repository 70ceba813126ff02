package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// nullEncoding is the canonical encoding for dtype.KindNull: every element
// is the null value, carried by length alone.
type nullEncoding struct{}

func (nullEncoding) ID() EncodingID { return IDNull }

func (nullEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if dt.PhysicalDType().Kind() != dtype.KindNull {
		return fmt.Errorf("null: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(children) != 0 || len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("null: %w: expected no children, buffers or metadata", ErrInvalidEncoding)
	}
	return nil
}

func (nullEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (nullEncoding) IsValid(a *Array, i int) (bool, error) { return false, nil }

func (n nullEncoding) LogicalValidity(a *Array) (*Array, error) {
	return NewBool(make([]bool, a.Length()), nil, false)
}

func (nullEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	out, err := New(IDNull, a.DType(), uint32(end-start), nil, nil, nil)
	return out, true, err
}

// NewNull constructs a length-n Null array.
func NewNull(n int) *Array {
	return mustNew(IDNull, dtype.Null(true), uint32(n), nil, nil, nil)
}
