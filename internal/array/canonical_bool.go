package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// boolEncoding is the canonical encoding for dtype.KindBool: a bit-packed
// values buffer, plus an optional bit-packed validity buffer when the
// dtype is nullable.
type boolEncoding struct{}

func (boolEncoding) ID() EncodingID { return IDBool }

func (boolEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if dt.PhysicalDType().Kind() != dtype.KindBool {
		return fmt.Errorf("bool: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(children) != 0 || len(metadata) != 0 {
		return fmt.Errorf("bool: %w: expected no children or metadata", ErrInvalidEncoding)
	}
	wantBuffers := 1
	if dt.Nullable() {
		wantBuffers = 2
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("bool: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	if buffers[0].Len() < bitmapLen(int(length)) {
		return fmt.Errorf("bool: %w: values buffer too short for length %d", ErrInvalidEncoding, length)
	}
	if dt.Nullable() && buffers[1].Len() < bitmapLen(int(length)) {
		return fmt.Errorf("bool: %w: validity buffer too short for length %d", ErrInvalidEncoding, length)
	}
	return nil
}

func (boolEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (boolEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(1), i), nil
}

func (e boolEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(1), i)
	}
	return NewBool(out, nil, false)
}

func (boolEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	vals := make([]bool, end-start)
	for i := range vals {
		vals[i] = bitmapGet(a.Buffer(0), start+i)
	}
	var validity []bool
	if a.DType().Nullable() {
		validity = make([]bool, end-start)
		for i := range validity {
			validity[i] = bitmapGet(a.Buffer(1), start+i)
		}
	}
	out, err := NewBool(vals, validity, a.DType().Nullable())
	return out, true, err
}

// Value returns the boolean value at index i, ignoring validity.
func (boolEncoding) Value(a *Array, i int) bool { return bitmapGet(a.Buffer(0), i) }

// BoolValue returns the boolean value at index i of a Bool-encoded array.
func BoolValue(a *Array, i int) bool { return bitmapGet(a.Buffer(0), i) }

// NewBool constructs a canonical Bool array from values, with an optional
// parallel validity slice (nil means "all valid"; nullable controls
// whether a validity buffer is attached at all).
func NewBool(values []bool, validity []bool, nullable bool) (*Array, error) {
	buffers := []*buffer.Buffer{bitmapBuild(values)}
	if nullable {
		if validity == nil {
			validity = allTrue(len(values))
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	return New(IDBool, dtype.Bool(nullable), uint32(len(values)), nil, nil, buffers)
}
