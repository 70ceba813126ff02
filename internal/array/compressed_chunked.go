package array

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// chunkedEncoding concatenates same-dtype children end to end. It is the
// only encoding whose children may differ in encoding from each other
// and from the parent; layout readers produce it directly from a
// ChunkedLayout without forcing a canonical materialization.
type chunkedEncoding struct{}

func (chunkedEncoding) ID() EncodingID { return IDChunked }

func (chunkedEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if len(buffers) != 0 || len(metadata) != 0 {
		return fmt.Errorf("chunked: %w: expected no buffers or metadata", ErrInvalidEncoding)
	}
	total := 0
	for _, c := range children {
		if !c.DType().Equal(dt) {
			return fmt.Errorf("chunked: %w: chunk dtype %s, expected %s", ErrDTypeMismatch, c.DType(), dt)
		}
		total += c.Length()
	}
	if total != int(length) {
		return fmt.Errorf("chunked: %w: chunk lengths sum to %d, expected %d", ErrInvalidEncoding, total, length)
	}
	return nil
}

func (e chunkedEncoding) IntoCanonical(a *Array) (*Array, error) {
	canon := make([]*Array, a.NumChildren())
	for i, c := range a.Children() {
		cc, err := c.IntoCanonical()
		if err != nil {
			return nil, err
		}
		canon[i] = cc
	}
	return concatCanonical(a.DType(), canon)
}

func (e chunkedEncoding) locate(a *Array, i int) (childIdx, childOffset int) {
	for idx, c := range a.Children() {
		if i < c.Length() {
			return idx, i
		}
		i -= c.Length()
	}
	panic("array: chunked: index locate overran children")
}

func (e chunkedEncoding) IsValid(a *Array, i int) (bool, error) {
	idx, off := e.locate(a, i)
	return a.Child(idx).IsValid(off)
}

func (e chunkedEncoding) LogicalValidity(a *Array) (*Array, error) {
	out := make([]bool, 0, a.Length())
	for _, c := range a.Children() {
		v, err := c.LogicalValidity()
		if err != nil {
			return nil, err
		}
		for i := 0; i < v.Length(); i++ {
			out = append(out, BoolValue(v, i))
		}
	}
	return NewBool(out, nil, false)
}

// FilterFastPath lets compute's filter kernel skip whole chunks whose
// selection mask is entirely false instead of canonicalizing them.
func (e chunkedEncoding) FilterFastPath(a *Array, mask *Array) (*Array, bool, error) {
	offset := 0
	var kept []*Array
	for _, c := range a.Children() {
		sub, err := mask.Slice(offset, offset+c.Length())
		if err != nil {
			return nil, false, err
		}
		offset += c.Length()
		anyTrue := false
		subCanon, err := sub.IntoCanonical()
		if err != nil {
			return nil, false, err
		}
		for i := 0; i < subCanon.Length(); i++ {
			if ok, _ := subCanon.IsValid(i); ok && BoolValue(subCanon, i) {
				anyTrue = true
				break
			}
		}
		if !anyTrue {
			continue
		}
		filtered, err := filterArray(c, subCanon)
		if err != nil {
			return nil, false, err
		}
		if filtered.Length() > 0 {
			kept = append(kept, filtered)
		}
	}
	out, err := NewChunked(a.DType(), kept)
	return out, true, err
}

// NewChunked constructs a Chunked array from same-dtype chunks.
func NewChunked(dt *dtype.DType, chunks []*Array) (*Array, error) {
	total := 0
	for _, c := range chunks {
		total += c.Length()
	}
	return New(IDChunked, dt, uint32(total), nil, chunks, nil)
}
