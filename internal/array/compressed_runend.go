package array

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// runEndEncoding stores one value per run plus the exclusive end offset
// of each run, suited to sorted or repetitive columns. compute's
// search_sorted kernel special-cases it, binary-searching the (small)
// ends buffer instead of the (large) expanded column.
type runEndEncoding struct{}

func (runEndEncoding) ID() EncodingID { return IDRunEnd }

func (runEndEncoding) Validate(dt *dtype.DType, length uint32, metadata []byte, children []*Array, buffers []*buffer.Buffer) error {
	if len(metadata) != 0 {
		return fmt.Errorf("runend: %w: expected no metadata", ErrInvalidEncoding)
	}
	if len(children) != 1 {
		return fmt.Errorf("runend: %w: expected exactly 1 values child", ErrInvalidEncoding)
	}
	if !children[0].DType().Equal(dt) {
		return fmt.Errorf("runend: %w: values dtype mismatch", ErrDTypeMismatch)
	}
	if len(buffers) != 1 {
		return fmt.Errorf("runend: %w: expected 1 run-ends buffer", ErrInvalidEncoding)
	}
	runs := children[0].Length()
	if buffers[0].Len() != runs*4 {
		return fmt.Errorf("runend: %w: run-ends buffer length %d, expected %d", ErrInvalidEncoding, buffers[0].Len(), runs*4)
	}
	ends := buffers[0].Bytes()
	prev := uint32(0)
	for r := 0; r < runs; r++ {
		v := binary.LittleEndian.Uint32(ends[r*4:])
		if v <= prev {
			return fmt.Errorf("runend: %w: run ends must be strictly increasing", ErrInvalidEncoding)
		}
		prev = v
	}
	if runs > 0 && prev != length {
		return fmt.Errorf("runend: %w: final run end %d != length %d", ErrInvalidEncoding, prev, length)
	}
	return nil
}

// RunEndsOf returns the raw run-end offsets.
func RunEndsOf(a *Array) []uint32 {
	b := a.Buffer(0).Bytes()
	n := len(b) / 4
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

func (e runEndEncoding) runFor(a *Array, i int) int {
	ends := a.Buffer(0).Bytes()
	runs := a.Child(0).Length()
	return sort.Search(runs, func(r int) bool {
		return binary.LittleEndian.Uint32(ends[r*4:]) > uint32(i)
	})
}

func (e runEndEncoding) IntoCanonical(a *Array) (*Array, error) {
	indices := make([]int, a.Length())
	for i := range indices {
		indices[i] = e.runFor(a, i)
	}
	return TakeGeneric(a.Child(0), indices)
}

func (e runEndEncoding) IsValid(a *Array, i int) (bool, error) {
	return a.Child(0).IsValid(e.runFor(a, i))
}

func (e runEndEncoding) LogicalValidity(a *Array) (*Array, error) {
	out := make([]bool, a.Length())
	for i := range out {
		v, err := a.Child(0).IsValid(e.runFor(a, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewBool(out, nil, false)
}

// SearchSortedFastPath binary-searches the (small) run-ends buffer
// combined with the (small) per-run values, instead of expanding to the
// full logical length.
func (e runEndEncoding) SearchSortedFastPath(a *Array, target *dtype.Scalar) (int, bool, error) {
	values := a.Child(0)
	n := values.Length()
	var searchErr error
	r := sort.Search(n, func(r int) bool {
		v, err := ScalarAt(values, r)
		if err != nil {
			searchErr = err
			return false
		}
		c, err := dtype.Compare(v, target)
		if err != nil {
			searchErr = err
			return false
		}
		return c >= 0
	})
	if searchErr != nil {
		return 0, false, searchErr
	}
	if r == 0 {
		return 0, true, nil
	}
	ends := RunEndsOf(a)
	return int(ends[r-1]), true, nil
}

// NewRunEnd constructs a RunEnd array from run-end offsets and per-run
// values; the final end must equal the desired logical length.
func NewRunEnd(values *Array, ends []uint32) (*Array, error) {
	raw := make([]byte, len(ends)*4)
	for i, e := range ends {
		binary.LittleEndian.PutUint32(raw[i*4:], e)
	}
	var length uint32
	if len(ends) > 0 {
		length = ends[len(ends)-1]
	}
	return New(IDRunEnd, values.DType(), length, nil, []*Array{values}, []*buffer.Buffer{buffer.New(raw, 4)})
}
