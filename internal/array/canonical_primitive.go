package array

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// primitiveEncoding is the canonical encoding for dtype.KindPrimitive: a
// flat, fixed-width values buffer in little-endian layout, plus an
// optional bit-packed validity buffer.
type primitiveEncoding struct{}

func (primitiveEncoding) ID() EncodingID { return IDPrimitive }

func (primitiveEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindPrimitive {
		return fmt.Errorf("primitive: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(children) != 0 || len(metadata) != 0 {
		return fmt.Errorf("primitive: %w: expected no children or metadata", ErrInvalidEncoding)
	}
	wantBuffers := 1
	if dt.Nullable() {
		wantBuffers = 2
	}
	if len(buffers) != wantBuffers {
		return fmt.Errorf("primitive: %w: expected %d buffers, got %d", ErrInvalidEncoding, wantBuffers, len(buffers))
	}
	elemSize := phys.Width().Bits() / 8
	if buffers[0].Len() != int(length)*elemSize {
		return fmt.Errorf("primitive: %w: values buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), int(length)*elemSize)
	}
	if dt.Nullable() && buffers[1].Len() < bitmapLen(int(length)) {
		return fmt.Errorf("primitive: %w: validity buffer too short", ErrInvalidEncoding)
	}
	return nil
}

func (primitiveEncoding) IntoCanonical(a *Array) (*Array, error) { return a, nil }

func (primitiveEncoding) IsValid(a *Array, i int) (bool, error) {
	if !a.DType().Nullable() {
		return true, nil
	}
	return bitmapGet(a.Buffer(1), i), nil
}

func (primitiveEncoding) LogicalValidity(a *Array) (*Array, error) {
	if !a.DType().Nullable() {
		return NewBool(allTrue(a.Length()), nil, false)
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = bitmapGet(a.Buffer(1), i)
	}
	return NewBool(out, nil, false)
}

func (primitiveEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	width := a.DType().PhysicalDType().Width()
	elemSize := width.Bits() / 8
	valsBuf, err := a.Buffer(0).Slice(start*elemSize, (end-start)*elemSize)
	if err != nil {
		return nil, false, err
	}
	buffers := []*buffer.Buffer{valsBuf}
	if a.DType().Nullable() {
		// Bit-aligned validity slicing isn't byte-aligned in general;
		// re-pack rather than reslice the bitmap.
		bits := make([]bool, end-start)
		for i := range bits {
			bits[i] = bitmapGet(a.Buffer(1), start+i)
		}
		buffers = append(buffers, bitmapBuild(bits))
	}
	out, err := New(IDPrimitive, a.DType(), uint32(end-start), nil, nil, buffers)
	return out, true, err
}

// PrimitiveInt reads a signed integer element regardless of validity.
func PrimitiveInt(a *Array, i int) int64 {
	return readInt(a.Buffer(0).Bytes(), i, a.DType().PhysicalDType().Width())
}

// PrimitiveUint reads an unsigned integer element regardless of validity.
func PrimitiveUint(a *Array, i int) uint64 {
	return readUint(a.Buffer(0).Bytes(), i, a.DType().PhysicalDType().Width())
}

// PrimitiveFloat reads a floating-point element regardless of validity.
func PrimitiveFloat(a *Array, i int) float64 {
	return readFloat(a.Buffer(0).Bytes(), i, a.DType().PhysicalDType().Width())
}

func readInt(b []byte, i int, w dtype.PrimitiveWidth) int64 {
	switch w {
	case dtype.I8:
		return int64(int8(b[i]))
	case dtype.I16:
		return int64(int16(binary.LittleEndian.Uint16(b[i*2:])))
	case dtype.I32:
		return int64(int32(binary.LittleEndian.Uint32(b[i*4:])))
	case dtype.I64:
		return int64(binary.LittleEndian.Uint64(b[i*8:]))
	default:
		return int64(readUint(b, i, w))
	}
}

func readUint(b []byte, i int, w dtype.PrimitiveWidth) uint64 {
	switch w {
	case dtype.U8:
		return uint64(b[i])
	case dtype.U16:
		return uint64(binary.LittleEndian.Uint16(b[i*2:]))
	case dtype.U32:
		return uint64(binary.LittleEndian.Uint32(b[i*4:]))
	case dtype.U64:
		return binary.LittleEndian.Uint64(b[i*8:])
	default:
		return uint64(readInt(b, i, w))
	}
}

func readFloat(b []byte, i int, w dtype.PrimitiveWidth) float64 {
	switch w {
	case dtype.F32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])))
	case dtype.F64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	default:
		return 0
	}
}

func writeInt(b []byte, i int, w dtype.PrimitiveWidth, v int64) {
	switch w {
	case dtype.I8:
		b[i] = byte(int8(v))
	case dtype.I16:
		binary.LittleEndian.PutUint16(b[i*2:], uint16(int16(v)))
	case dtype.I32:
		binary.LittleEndian.PutUint32(b[i*4:], uint32(int32(v)))
	case dtype.I64:
		binary.LittleEndian.PutUint64(b[i*8:], uint64(v))
	default:
		writeUint(b, i, w, uint64(v))
	}
}

func writeUint(b []byte, i int, w dtype.PrimitiveWidth, v uint64) {
	switch w {
	case dtype.U8:
		b[i] = byte(v)
	case dtype.U16:
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	case dtype.U32:
		binary.LittleEndian.PutUint32(b[i*4:], uint32(v))
	case dtype.U64:
		binary.LittleEndian.PutUint64(b[i*8:], v)
	default:
		writeInt(b, i, w, int64(v))
	}
}

func writeFloat(b []byte, i int, w dtype.PrimitiveWidth, v float64) {
	switch w {
	case dtype.F32:
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(float32(v)))
	case dtype.F64:
		binary.LittleEndian.PutUint64(b[i*8:], math.Float64bits(v))
	}
}

// NewPrimitiveInts constructs a canonical Primitive array of a signed or
// unsigned integer width from int64 values (truncated to width).
func NewPrimitiveInts(values []int64, width dtype.PrimitiveWidth, validity []bool, nullable bool) (*Array, error) {
	elemSize := width.Bits() / 8
	raw := make([]byte, len(values)*elemSize)
	for i, v := range values {
		writeInt(raw, i, width, v)
	}
	return newPrimitive(raw, width, len(values), validity, nullable)
}

// NewPrimitiveUints constructs a canonical Primitive array of an unsigned
// integer width from uint64 values (truncated to width).
func NewPrimitiveUints(values []uint64, width dtype.PrimitiveWidth, validity []bool, nullable bool) (*Array, error) {
	elemSize := width.Bits() / 8
	raw := make([]byte, len(values)*elemSize)
	for i, v := range values {
		writeUint(raw, i, width, v)
	}
	return newPrimitive(raw, width, len(values), validity, nullable)
}

// NewPrimitiveFloats constructs a canonical Primitive array of a floating
// width (F32 or F64) from float64 values.
func NewPrimitiveFloats(values []float64, width dtype.PrimitiveWidth, validity []bool, nullable bool) (*Array, error) {
	elemSize := width.Bits() / 8
	raw := make([]byte, len(values)*elemSize)
	for i, v := range values {
		writeFloat(raw, i, width, v)
	}
	return newPrimitive(raw, width, len(values), validity, nullable)
}

func newPrimitive(raw []byte, width dtype.PrimitiveWidth, n int, validity []bool, nullable bool) (*Array, error) {
	buffers := []*buffer.Buffer{buffer.New(raw, width.Bits()/8)}
	if nullable {
		if validity == nil {
			validity = allTrue(n)
		}
		buffers = append(buffers, bitmapBuild(validity))
	}
	return New(IDPrimitive, dtype.Primitive(width, nullable), uint32(n), nil, nil, buffers)
}
