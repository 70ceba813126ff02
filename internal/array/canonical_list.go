package array

import (
	"encoding/binary"
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// listEncoding is the canonical encoding for dtype.KindList: a single
// offsets buffer of length+1 uint32 entries delimiting runs in a single
// flattened element child, plus an optional validity buffer.
type listEncoding struct{}

func (listEncoding) ID() EncodingID { return IDList }

func (listEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindList {
		return fmt.Errorf("list: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(metadata) != 0 {
		return fmt.Errorf("list: %w: expected no metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("list: %w: expected exactly 1 element child", ErrInvalidEncoding)
	}
	if !children[0].DType().Equal(phys.Elem()) {
		return fmt.Errorf("list: %w: element dtype %s, expected %s", ErrDTypeMismatch, children[0].DType(), phys.Elem())
	}
	wantBuffers := 1
	if dt.Nullable() {
		wantBuffers = 2
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("list: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	if buffers[0].Len() != (int(length)+1)*4 {
		return fmt.Errorf("list: %w: offsets buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), (int(length)+1)*4)
	}
	return nil
}

func (listEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (listEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(1), i), nil
}

func (listEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(1), i)
	}
	return NewBool(out, nil, false)
}

func (listEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	rawOffsetAt := func(i int) uint32 {
		return binary.LittleEndian.Uint32(a.Buffer(0).Bytes()[i*4:])
	}
	elemStart := rawOffsetAt(start)
	elemEnd := rawOffsetAt(end)
	elements, err := a.Child(0).Slice(int(elemStart), int(elemEnd))
	if err != nil {
		return nil, false, err
	}
	offsets := make([]uint32, end-start+1)
	for i := 0; i <= end-start; i++ {
		offsets[i] = rawOffsetAt(start+i) - elemStart
	}
	var validity []bool
	if a.DType().Nullable() {
		validity = make([]bool, end-start)
		for i := range validity {
			validity[i] = bitmapGet(a.Buffer(1), start+i)
		}
	}
	out, err := NewList(elements, offsets, validity, a.DType().Nullable())
	return out, true, err
}

// ListOffset returns the [start, end) element-child range for slot i.
func ListOffset(a *Array, i int) (int, int) {
	offs := a.Buffer(0).Bytes()
	start := binary.LittleEndian.Uint32(offs[i*4:])
	end := binary.LittleEndian.Uint32(offs[(i+1)*4:])
	return int(start), int(end)
}

// NewList constructs a canonical List array from contiguous per-slot
// element ranges over a shared flattened elements child.
func NewList(elements *Array, offsets []uint32, validity []bool, nullable bool) (*Array, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("array: NewList: %w: offsets must include at least the trailing bound", ErrInvalidArgument)
	}
	raw := make([]byte, len(offsets)*4)
	for i, o := range offsets {
		binary.LittleEndian.PutUint32(raw[i*4:], o)
	}
	n := len(offsets) - 1
	buffers := []*buffer.Buffer{buffer.New(raw, 4)}
	if nullable {
		if validity == nil {
			validity = allTrue(n)
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	return New(IDList, dtype.List(elements.DType(), nullable), uint32(n), nil, []*Array{elements}, buffers)
}
