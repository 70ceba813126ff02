package compute

import (
	"sort"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
)

// fastSearchSorted is implemented by encodings (RunEnd) that can locate
// an insertion point without expanding to their full logical length.
type fastSearchSorted interface {
	SearchSortedFastPath(a *array.Array, target *dtype.Scalar) (int, bool, error)
}

// SearchSorted returns the index of the first element >= target in a,
// which must already be sorted ascending (spec.md's IsSorted statistic
// records this; callers are responsible for checking it first).
func SearchSorted(a *array.Array, target *dtype.Scalar) (int, error) {
	if enc, ok := a.Encoding().(fastSearchSorted); ok {
		idx, handled, err := enc.SearchSortedFastPath(a, target)
		if err != nil {
			return 0, err
		}
		if handled {
			return idx, nil
		}
	}
	n := a.Length()
	var searchErr error
	idx := sort.Search(n, func(i int) bool {
		s, err := array.ScalarAt(a, i)
		if err != nil {
			searchErr = err
			return false
		}
		if s.IsNull() {
			return false
		}
		cmp, err := dtype.Compare(s, target)
		if err != nil {
			searchErr = err
			return false
		}
		return cmp >= 0
	})
	return idx, searchErr
}
