package array

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// sparseEncoding stores a base "fill" value plus a sorted set of patch
// indices/values that override it, suited to arrays that are mostly one
// value with rare exceptions (e.g. a mostly-null column).
type sparseEncoding struct{}

func (sparseEncoding) ID() EncodingID { return IDSparse }

func (sparseEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if len(metadata) != 0 {
		return fmt.Errorf("sparse: %w: expected no metadata", ErrInvalidEncoding)
	}
	if len(children) != 2 {
		return fmt.Errorf("sparse: %w: expected [patches, fill] children", ErrInvalidEncoding)
	}
	if len(buffers) != 1 {
		return fmt.Errorf("sparse: %w: expected 1 patch-index buffer", ErrInvalidEncoding)
	}
	patches, fill := children[0], children[1]
	if !patches.DType().Equal(dt) || !fill.DType().Equal(dt) {
		return fmt.Errorf("sparse: %w: patch/fill dtype mismatch", ErrDTypeMismatch)
	}
	if fill.Length() != 1 {
		return fmt.Errorf("sparse: %w: fill child must have length 1", ErrInvalidEncoding)
	}
	if buffers[0].Len() != patches.Length()*4 {
		return fmt.Errorf("sparse: %w: patch-index buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), patches.Length()*4)
	}
	idx := buffers[0].Bytes()
	prev := -1
	for p := 0; p < patches.Length(); p++ {
		v := int(binary.LittleEndian.Uint32(idx[p*4:]))
		if v <= prev || v >= int(length) {
			return fmt.Errorf("sparse: %w: patch indices must be strictly increasing and in range", ErrInvalidEncoding)
		}
		prev = v
	}
	return nil
}

func (e sparseEncoding) patchSlot(a *Array, i int) (int, bool) {
	idx := a.Buffer(0).Bytes()
	n := a.Child(0).Length()
	p := sort.Search(n, func(p int) bool {
		return int(binary.LittleEndian.Uint32(idx[p*4:])) >= i
	})
	if p < n && int(binary.LittleEndian.Uint32(idx[p*4:])) == i {
		return p, true
	}
	return 0, false
}

func (e sparseEncoding) IntoCanonical(a *Array) (*Array, error) {
	fillScalar, err := ScalarAt(a.Child(1), 0)
	if err != nil {
		return nil, err
	}
	scalars := make([]*dtype.Scalar, a.Length())
	for i := range scalars {
		scalars[i] = fillScalar
	}
	patches := a.Child(0)
	idx := a.Buffer(0).Bytes()
	for p := 0; p < patches.Length(); p++ {
		i := int(binary.LittleEndian.Uint32(idx[p*4:]))
		s, err := ScalarAt(patches, p)
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	return BuildFromScalars(a.DType(), scalars)
}

func (e sparseEncoding) IsValid(a *Array, i int) (bool, error) {
	if p, ok := e.patchSlot(a, i); ok {
		return a.Child(0).IsValid(p)
	}
	return a.Child(1).IsValid(0)
}

func (e sparseEncoding) LogicalValidity(a *Array) (*Array, error) {
	out := make([]bool, a.Length())
	for i := range out {
		v, err := e.IsValid(a, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewBool(out, nil, false)
}

// NewSparse constructs a Sparse array of the given length with patches at
// strictly increasing indices overriding fill everywhere else.
func NewSparse(dt *dtype.DType, length int, indices []uint32, patches *Array, fill *dtype.Scalar) (*Array, error) {
	fillArr, err := BuildFromScalars(dt, []*dtype.Scalar{fill})
	if err != nil {
		return nil, err
	}
	raw := make([]byte, len(indices)*4)
	for i, v := range indices {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	return New(IDSparse, dt, uint32(length), nil, []*Array{patches, fillArr}, []*buffer.Buffer{buffer.New(raw, 4)})
}
