package array

import (
	"encoding/binary"
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// viewSize is the width in bytes of one Arrow-style binary view record:
// a 4-byte length, then either 12 bytes of inlined data (length <= 12) or
// a 4-byte prefix + 4-byte data-buffer index + 4-byte offset.
const viewSize = 16
const viewInlineThreshold = 12

// varBinViewEncoding is the canonical encoding for Utf8 and Binary: a
// fixed-width "view" record per element addressing either inlined bytes
// or an offset into one of the array's data buffers, mirroring Arrow's
// binary-view layout for zero-copy interop.
type varBinViewEncoding struct{}

func (varBinViewEncoding) ID() EncodingID { return IDVarBinView }

func (varBinViewEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindUtf8 && phys.Kind() != dtype.KindBinary {
		return fmt.Errorf("varbinview: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(children) != 0 {
		return fmt.Errorf("varbinview: %w: expected no children", ErrInvalidEncoding)
	}
	if len(metadata) != 1 {
		return fmt.Errorf("varbinview: %w: expected 1-byte metadata (data buffer count)", ErrInvalidEncoding)
	}
	numData := int(metadata[0])
	wantBuffers := 1 + numData
	if dt.Nullable() {
		wantBuffers++
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("varbinview: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	if buffers[0].Len() != int(length)*viewSize {
		return fmt.Errorf("varbinview: %w: views buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), int(length)*viewSize)
	}
	return nil
}

func (varBinViewEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (e varBinViewEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(len(a.Buffers())-1), i), nil
}

func (e varBinViewEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	vbuf := a.Buffer(len(a.Buffers()) - 1)
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(vbuf, i)
	}
	return NewBool(out, nil, false)
}

func (e varBinViewEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	n := end - start
	values := make([][]byte, n)
	for i := range values {
		values[i] = VarBinViewBytes(a, start+i)
	}
	var validity []bool
	if a.DType().Nullable() {
		vbuf := a.Buffer(len(a.Buffers()) - 1)
		validity = make([]bool, n)
		for i := range validity {
			validity[i] = bitmapGet(vbuf, start+i)
		}
	}
	out, err := NewVarBinView(values, a.DType().Kind() == dtype.KindUtf8, validity, a.DType().Nullable())
	return out, true, err
}

// VarBinViewBytes returns the raw bytes for element i, regardless of
// validity (null slots have unspecified but valid view contents).
func VarBinViewBytes(a *Array, i int) []byte {
	view := a.Buffer(0).Bytes()[i*viewSize : (i+1)*viewSize]
	n := binary.LittleEndian.Uint32(view[0:4])
	if n <= viewInlineThreshold {
		return view[4 : 4+n]
	}
	bufIdx := binary.LittleEndian.Uint32(view[8:12])
	off := binary.LittleEndian.Uint32(view[12:16])
	data := a.Buffer(1 + int(bufIdx)).Bytes()
	return data[off : off+n]
}

// NewVarBinView constructs a canonical Utf8 or Binary array, packing every
// value's bytes inline when <= 12 bytes and otherwise appending it to a
// single shared data buffer.
func NewVarBinView(values [][]byte, isUtf8 bool, validity []bool, nullable bool) (*Array, error) {
	views := make([]byte, len(values)*viewSize)
	var data []byte
	for i, v := range values {
		rec := views[i*viewSize : (i+1)*viewSize]
		binary.LittleEndian.PutUint32(rec[0:4], uint32(len(v)))
		if len(v) <= viewInlineThreshold {
			copy(rec[4:], v)
			continue
		}
		copy(rec[4:8], v[:4])
		binary.LittleEndian.PutUint32(rec[8:12], 0)
		binary.LittleEndian.PutUint32(rec[12:16], uint32(len(data)))
		data = append(data, v...)
	}
	buffers := []*buffer.Buffer{buffer.New(views, 1), buffer.New(data, 1)}
	if nullable {
		if validity == nil {
			validity = allTrue(len(values))
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	var dt *dtype.DType
	if isUtf8 {
		dt = dtype.Utf8(nullable)
	} else {
		dt = dtype.Binary(nullable)
	}
	return New(IDVarBinView, dt, uint32(len(values)), []byte{1}, nil, buffers)
}
