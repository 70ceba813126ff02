// Package array implements Vortex's in-memory recursive Array value, the
// Encoding vtable every array dispatches through, and the process-wide
// Registry of encodings.
package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// Array is the recursive tuple described in spec.md §3:
// (encoding, dtype, length, metadata, children, buffers, statistics).
// Arrays are immutable once constructed and shared by reference.
type Array struct {
	encodingID EncodingID
	dt         *dtype.DType
	length     uint32
	metadata   []byte
	children   []*Array
	buffers    []*buffer.Buffer
	stats      *Statistics
}

// New constructs an Array and validates it against its encoding's vtable
// (invariant I1 in spec.md §3). Returns InvalidEncoding if validation
// fails.
func New(id EncodingID, dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) (*Array, error) {
	enc, ok := Global.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("array: %w: %s", ErrUnknownEncoding, id)
	}
	if err := enc.Validate(dt, length, metadata, children, buffers); err != nil {
		return nil, fmt.Errorf("array: %w: %v", ErrInvalidEncoding, err)
	}
	return &Array{
		encodingID: id,
		dt:         dt,
		length:     length,
		metadata:   metadata,
		children:   children,
		buffers:    buffers,
		stats:      NewStatistics(),
	}, nil
}

// mustNew panics on validation failure. It is only used by canonical-
// encoding constructors in this package, whose invariants are enforced by
// construction and therefore cannot fail validation.
func mustNew(id EncodingID, dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) *Array {
	a, err := New(id, dt, length, metadata, children, buffers)
	if err != nil {
		panic(fmt.Sprintf("array: invariant violation constructing %s: %v", id, err))
	}
	return a
}

func (a *Array) EncodingID() EncodingID    { return a.encodingID }
func (a *Array) DType() *dtype.DType       { return a.dt }
func (a *Array) Length() int               { return int(a.length) }
func (a *Array) Metadata() []byte          { return a.metadata }
func (a *Array) Children() []*Array        { return a.children }
func (a *Array) Child(i int) *Array        { return a.children[i] }
func (a *Array) NumChildren() int          { return len(a.children) }
func (a *Array) Buffers() []*buffer.Buffer { return a.buffers }
func (a *Array) Buffer(i int) *buffer.Buffer { return a.buffers[i] }
func (a *Array) Statistics() *Statistics   { return a.stats }

// Encoding returns the underlying encoding vtable, for fast-path type
// assertions by the compute package (e.g. checking whether an encoding
// implements a specialized search_sorted or filter kernel).
func (a *Array) Encoding() Encoding { return a.encoding() }

func (a *Array) encoding() Encoding {
	enc, ok := Global.Lookup(a.encodingID)
	if !ok {
		panic(fmt.Sprintf("array: encoding %s vanished from registry after construction", a.encodingID))
	}
	return enc
}

// IntoCanonical produces the canonical encoding for a's DType. Zero-copy
// when a is already canonical (invariant I3, spec.md §4.3).
func (a *Array) IntoCanonical() (*Array, error) {
	return a.encoding().IntoCanonical(a)
}

// IsValid reports the validity (non-null-ness) of the element at index i.
func (a *Array) IsValid(i int) (bool, error) {
	if i < 0 || i >= a.Length() {
		return false, fmt.Errorf("array: IsValid: %w: index %d, length %d", ErrOutOfRange, i, a.Length())
	}
	return a.encoding().IsValid(a, i)
}

// LogicalValidity returns a canonical Bool array (no validity buffer of
// its own) describing which elements are valid.
func (a *Array) LogicalValidity() (*Array, error) {
	return a.encoding().LogicalValidity(a)
}

// Slice returns a's elements in [start, end), preferring the encoding's
// fast path and falling back to canonicalization when absent.
func (a *Array) Slice(start, end int) (*Array, error) {
	if start < 0 || end < start || end > a.Length() {
		return nil, fmt.Errorf("array: Slice: %w: [%d:%d) of length %d", ErrOutOfRange, start, end, a.Length())
	}
	if fp, ok := a.encoding().(sliceFastPath); ok {
		res, ok2, err := fp.SliceFastPath(a, start, end)
		if err != nil {
			return nil, err
		}
		if ok2 {
			return res, nil
		}
	}
	canon, err := a.IntoCanonical()
	if err != nil {
		return nil, err
	}
	if canon.encodingID == a.encodingID {
		// Canonicalizing a canonical array must not recurse forever; the
		// canonical encodings all implement their own slice fast path.
		return nil, fmt.Errorf("array: Slice: %w: canonical encoding %s has no slice fast path", ErrUnsupportedOperation, a.encodingID)
	}
	return canon.Slice(start, end)
}

// sliceFastPath is implemented by encodings with a specialized Slice.
type sliceFastPath interface {
	SliceFastPath(a *Array, start, end int) (*Array, bool, error)
}
