package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// structEncoding is the canonical encoding for dtype.KindStruct: one child
// array per field, each of the same length as the parent, plus an
// optional validity buffer for the struct itself (a field being valid
// says nothing about whether the struct slot containing it is valid).
type structEncoding struct{}

func (structEncoding) ID() EncodingID { return IDStruct }

func (structEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindStruct {
		return fmt.Errorf("struct: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(metadata) != 0 {
		return fmt.Errorf("struct: %w: expected no metadata", ErrInvalidEncoding)
	}
	fields := phys.Fields()
	if len(children) != len(fields) {
		return fmt.Errorf("struct: %w: expected %d field children, got %d", ErrInvalidEncoding, len(fields), len(children))
	}
	for i, c := range children {
		if c.Length() != int(length) {
			return fmt.Errorf("struct: %w: field %q length %d, expected %d", ErrInvalidEncoding, fields[i].Name, c.Length(), length)
		}
		if !c.DType().Equal(fields[i].Type) {
			return fmt.Errorf("struct: %w: field %q dtype %s, expected %s", ErrDTypeMismatch, fields[i].Name, c.DType(), fields[i].Type)
		}
	}
	wantBuffers := 0
	if dt.Nullable() {
		wantBuffers = 1
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("struct: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	return nil
}

func (structEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (structEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(0), i), nil
}

func (structEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(0), i)
	}
	return NewBool(out, nil, false)
}

func (structEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	children := make([]*Array, a.NumChildren())
	for i, c := range a.Children() {
		sliced, err := c.Slice(start, end)
		if err != nil {
			return nil, false, err
		}
		children[i] = sliced
	}
	var buffers []*buffer.Buffer
	if a.DType().Nullable() {
		bits := make([]bool, end-start)
		for i := range bits {
			bits[i] = bitmapGet(a.Buffer(0), start+i)
		}
		buffers = []*buffer.Buffer{bitmapBuild(bits)}
	}
	out, err := New(IDStruct, a.DType(), uint32(end-start), nil, children, buffers)
	return out, true, err
}

// NewStruct constructs a canonical Struct array from named field arrays,
// all of equal length.
func NewStruct(fields []dtype.Field, children []*Array, validity []bool, nullable bool) (*Array, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("array: NewStruct: %w: at least one field required", ErrInvalidArgument)
	}
	n := children[0].Length()
	var buffers []*buffer.Buffer
	if nullable {
		if validity == nil {
			validity = allTrue(n)
		}
		buffers = []*buffer.Buffer{bitmapBuild(validity)}
	}
	return New(IDStruct, dtype.Struct(nullable, fields...), uint32(n), nil, children, buffers)
}
