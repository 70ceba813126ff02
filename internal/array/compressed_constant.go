package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// constantEncoding represents a run of a single repeated value with O(1)
// storage: a length-1 child array holding the value. compute's equality
// and comparison kernels special-case it to avoid materializing.
type constantEncoding struct{}

func (constantEncoding) ID() EncodingID { return IDConstant }

func (constantEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("constant: %w: expected no buffers or metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("constant: %w: expected exactly 1 value child", ErrInvalidEncoding)
	}
	if children[0].Length() != 1 {
		return fmt.Errorf("constant: %w: value child must have length 1, got %d", ErrInvalidEncoding, children[0].Length())
	}
	if !children[0].DType().Equal(dt) {
		return fmt.Errorf("constant: %w: value child dtype %s, expected %s", ErrDTypeMismatch, children[0].DType(), dt)
	}
	return nil
}

func (constantEncoding) IntoCanonical(a *Array) (*Array, error) {
	idx := make([]int, a.Length())
	return TakeGeneric(a.Child(0), idx)
}

func (constantEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(0) }

func (constantEncoding) LogicalValidity(a *Array) (*Array, error) {
	valid, err := a.Child(0).IsValid(0)
	if err != nil {
		return nil, err
	}
	out := make([]bool, a.Length())
	for i := range out {
		out[i] = valid
	}
	return NewBool(out, nil, false)
}

func (constantEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	out, err := New(IDConstant, a.DType(), uint32(end-start), nil, []*Array{a.Child(0)}, nil)
	return out, true, err
}

// TakeFastPath answers take for a Constant source by returning another
// Constant of the gathered length, without touching indices.
func (e constantEncoding) TakeFastPath(a *Array, indices []int) (*Array, bool, error) {
	out, err := New(IDConstant, a.DType(), uint32(len(indices)), nil, []*Array{a.Child(0)}, nil)
	return out, true, err
}

// ConstantScalar returns the repeated value of a Constant-encoded array.
func ConstantScalar(a *Array) (*dtype.Scalar, error) { return ScalarAt(a.Child(0), 0) }

// NewConstant constructs a Constant array repeating value length times.
func NewConstant(dt *dtype.DType, value *dtype.Scalar, length int) (*Array, error) {
	valueArr, err := BuildFromScalars(dt, []*dtype.Scalar{value})
	if err != nil {
		return nil, err
	}
	return New(IDConstant, dt, uint32(length), nil, []*Array{valueArr}, nil)
}
