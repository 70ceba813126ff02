package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// dictEncoding stores a dictionary of unique values plus a fixed-width
// code per element indexing into it, suited to low-cardinality columns.
// compute's equality kernel special-cases it by comparing against the
// (small) dictionary instead of the (large) expanded column.
type dictEncoding struct{}

func (dictEncoding) ID() EncodingID { return IDDict }

func codeWidthBytes(metadata []byte) (int, error) {
	if len(metadata) != 1 {
		return 0, fmt.Errorf("dict: %w: expected 1-byte metadata (code width)", ErrInvalidEncoding)
	}
	switch metadata[0] {
	case 1, 2, 4:
		return int(metadata[0]), nil
	default:
		return 0, fmt.Errorf("dict: %w: unsupported code width %d", ErrInvalidEncoding, metadata[0])
	}
}

func (dictEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	width, err := codeWidthBytes(metadata)
	if err != nil {
		return err
	}
	if len(children) != 1 {
		return fmt.Errorf("dict: %w: expected exactly 1 dictionary child", ErrInvalidEncoding)
	}
	if !children[0].DType().Equal(dt) {
		return fmt.Errorf("dict: %w: dictionary dtype mismatch", ErrDTypeMismatch)
	}
	if len(buffers) != 1 {
		return fmt.Errorf("dict: %w: expected 1 codes buffer", ErrInvalidEncoding)
	}
	if buffers[0].Len() != int(length)*width {
		return fmt.Errorf("dict: %w: codes buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), int(length)*width)
	}
	return nil
}

// CodeAt reads the dictionary code for element i.
func CodeAt(a *Array, i int) int {
	width, _ := codeWidthBytes(a.Metadata())
	b := a.Buffer(0).Bytes()
	switch width {
	case 1:
		return int(b[i])
	case 2:
		return int(uint16(b[i*2]) | uint16(b[i*2+1])<<8)
	default:
		return int(uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24)
	}
}

func (dictEncoding) IntoCanonical(a *Array) (*Array, error) {
	indices := make([]int, a.Length())
	for i := range indices {
		indices[i] = CodeAt(a, i)
	}
	return TakeGeneric(a.Child(0), indices)
}

func (dictEncoding) IsValid(a *Array, i int) (bool, error) {
	return a.Child(0).IsValid(CodeAt(a, i))
}

func (dictEncoding) LogicalValidity(a *Array) (*Array, error) {
	out := make([]bool, a.Length())
	for i := range out {
		v, err := a.Child(0).IsValid(CodeAt(a, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewBool(out, nil, false)
}

// DictValues returns the dictionary child array.
func DictValues(a *Array) *Array { return a.Child(0) }

func codeWidthFor(cardinality int) byte {
	switch {
	case cardinality <= 1<<8:
		return 1
	case cardinality <= 1<<16:
		return 2
	default:
		return 4
	}
}

func putCode(b []byte, i int, width int, v uint32) {
	switch width {
	case 1:
		b[i] = byte(v)
	case 2:
		b[i*2], b[i*2+1] = byte(v), byte(v>>8)
	default:
		b[i*4], b[i*4+1], b[i*4+2], b[i*4+3] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	}
}

// NewDict constructs a Dict array from per-element dictionary codes and
// the dictionary values child.
func NewDict(dt *dtype.DType, codes []uint32, dict *Array) (*Array, error) {
	w := int(codeWidthFor(dict.Length()))
	raw := make([]byte, len(codes)*w)
	for i, c := range codes {
		putCode(raw, i, w, c)
	}
	return New(IDDict, dt, uint32(len(codes)), []byte{byte(w)}, []*Array{dict}, []*buffer.Buffer{buffer.New(raw, w)})
}
