package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// extensionEncoding is the canonical encoding for dtype.KindExtension: a
// single storage child whose physical representation governs layout,
// transparently to every encoding that doesn't care about the extension
// id (spec.md §3 extension-transparency invariant).
type extensionEncoding struct{}

func (extensionEncoding) ID() EncodingID { return IDExtension }

func (extensionEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if dt.Kind() != dtype.KindExtension {
		return fmt.Errorf("extension: %w: dtype kind %s", ErrDTypeMismatch, dt.Kind())
	}
	if len(metadata) != 0 || len(buffers) != 0 {
		return fmt.Errorf("extension: %w: expected no metadata or buffers", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("extension: %w: expected exactly 1 storage child", ErrInvalidEncoding)
	}
	if children[0].Length() != int(length) {
		return fmt.Errorf("extension: %w: storage child length %d, expected %d", ErrInvalidEncoding, children[0].Length(), length)
	}
	if !children[0].DType().Equal(dt.ExtensionStorage()) {
		return fmt.Errorf("extension: %w: storage child dtype %s, expected %s", ErrDTypeMismatch, children[0].DType(), dt.ExtensionStorage())
	}
	return nil
}

// IntoCanonical for Extension unwraps the storage representation;
// per-encoding dispatch elsewhere (e.g. in compute kernels) re-wraps the
// result with the extension dtype when the operation must preserve it.
func (extensionEncoding) IntoCanonical(a *Array) (*Array, error) { return a.Child(0).IntoCanonical() }

func (extensionEncoding) IsValid(a *Array, i int) (bool, error) { return a.Child(0).IsValid(i) }

func (extensionEncoding) LogicalValidity(a *Array) (*Array, error) { return a.Child(0).LogicalValidity() }

func (extensionEncoding) SliceFastPath(a *Array, start, end int) (*Array, bool, error) {
	storage, err := a.Child(0).Slice(start, end)
	if err != nil {
		return nil, false, err
	}
	out, err := New(IDExtension, a.DType(), uint32(end-start), nil, []*Array{storage}, nil)
	return out, true, err
}

// NewExtension wraps a storage array under an Extension dtype. storage's
// dtype must equal extDType's storage dtype.
func NewExtension(extDType *dtype.DType, storage *Array) (*Array, error) {
	if extDType.Kind() != dtype.KindExtension {
		return nil, fmt.Errorf("array: NewExtension: %w: not an extension dtype", ErrDTypeMismatch)
	}
	return New(IDExtension, extDType, uint32(storage.Length()), nil, []*Array{storage}, nil)
}
