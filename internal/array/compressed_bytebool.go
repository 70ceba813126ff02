package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// byteBoolEncoding stores one byte per boolean (non-zero = true) instead
// of bit-packing, trading density for the ability to memory-map directly
// from formats (e.g. some Arrow producers) that never bit-pack bools.
type byteBoolEncoding struct{}

func (byteBoolEncoding) ID() EncodingID { return IDByteBool }

func (byteBoolEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if dt.PhysicalDType().Kind() != dtype.KindBool {
		return fmt.Errorf("bytebool: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(children) != 0 || len(metadata) != 0 {
		return fmt.Errorf("bytebool: %w: expected no children or metadata", ErrInvalidEncoding)
	}
	wantBuffers := 1
	if dt.Nullable() {
		wantBuffers = 2
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("bytebool: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	if buffers[0].Len() != int(length) {
		return fmt.Errorf("bytebool: %w: values buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), length)
	}
	if dt.Nullable() && buffers[1].Len() < bitmapLen(int(length)) {
		return fmt.Errorf("bytebool: %w: validity buffer too short", ErrInvalidEncoding)
	}
	return nil
}

func (byteBoolEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(1), i), nil
}

func (byteBoolEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(1), i)
	}
	return NewBool(out, nil, false)
}

func (byteBoolEncoding) IntoCanonical(a *Array) (*Array, error) {
	n := a.Length()
	vals := make([]bool, n)
	vb := a.Buffer(0).Bytes()
	for i := range vals {
		vals[i] = vb[i] != 0
	}
	var validity []bool
	if a.DType().Nullable() {
		validity = make([]bool, n)
		for i := range validity {
			validity[i] = bitmapGet(a.Buffer(1), i)
		}
	}
	return NewBool(vals, validity, a.DType().Nullable())
}

// NewByteBool constructs a ByteBool array, one byte per element.
func NewByteBool(values []bool, validity []bool, nullable bool) (*Array, error) {
	raw := make([]byte, len(values))
	for i, v := range values {
		if v {
			raw[i] = 1
		}
	}
	buffers := []*buffer.Buffer{buffer.New(raw, 1)}
	if nullable {
		if validity == nil {
			validity = allTrue(len(values))
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	return New(IDByteBool, dtype.Bool(nullable), uint32(len(values)), nil, nil, buffers)
}
