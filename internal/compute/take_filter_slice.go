package compute

import "github.com/vortexdb/vortex/internal/array"

// fastTake is implemented by encodings (Constant) that can gather
// indices without expanding to their full logical length.
type fastTake interface {
	TakeFastPath(a *array.Array, indices []int) (*array.Array, bool, error)
}

// fastFilter is implemented by encodings (Chunked) that can skip whole
// partitions of their data given a selection mask.
type fastFilter interface {
	FilterFastPath(a *array.Array, mask *array.Array) (*array.Array, bool, error)
}

// Take gathers a[indices[k]] for each k.
func Take(a *array.Array, indices []int) (*array.Array, error) {
	if enc, ok := a.Encoding().(fastTake); ok {
		out, handled, err := enc.TakeFastPath(a, indices)
		if err != nil {
			return nil, err
		}
		if handled {
			return out, nil
		}
	}
	return array.TakeGeneric(a, indices)
}

// Filter selects the elements of a for which mask is true, treating a
// null mask entry as false (spec.md §4.4).
func Filter(a *array.Array, mask *array.Array) (*array.Array, error) {
	canonMask, err := mask.IntoCanonical()
	if err != nil {
		return nil, err
	}
	if enc, ok := a.Encoding().(fastFilter); ok {
		out, handled, err := enc.FilterFastPath(a, canonMask)
		if err != nil {
			return nil, err
		}
		if handled {
			return out, nil
		}
	}
	return array.FilterGeneric(a, canonMask)
}

// Slice returns a[start:end), preferring the encoding's own fast path.
func Slice(a *array.Array, start, end int) (*array.Array, error) {
	return a.Slice(start, end)
}
